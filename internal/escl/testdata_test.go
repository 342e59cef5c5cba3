package escl

// Capabilities document modelled on an HP LaserJet MFP: prefixed elements,
// repeated ColorMode/DiscreteResolution, single ColorSpace and CcdChannel.
const capabilitiesXML = `<?xml version="1.0" encoding="UTF-8"?>
<scan:ScannerCapabilities xmlns:pwg="http://www.pwg.org/schemas/2010/12/sm" xmlns:scan="http://schemas.hp.com/imaging/escl/2011/05/03">
  <pwg:Version>2.63</pwg:Version>
  <pwg:MakeAndModel>HP LaserJet MFP M28w</pwg:MakeAndModel>
  <pwg:SerialNumber>VNC3K12345</pwg:SerialNumber>
  <scan:UUID>564e4333-4b31-3233-3435-f43909c1d2e1</scan:UUID>
  <scan:AdminURI>http://192.168.1.20/#hId-pgDevInfo</scan:AdminURI>
  <scan:IconURI>http://192.168.1.20/ipp/images/printer.png</scan:IconURI>
  <scan:Certifications>
    <scan:Certification>
      <scan:Name>mopria-certified-scan</scan:Name>
      <scan:Version>1.3</scan:Version>
    </scan:Certification>
  </scan:Certifications>
  <scan:Platen>
    <scan:PlatenInputCaps>
      <scan:MinWidth>8</scan:MinWidth>
      <scan:MaxWidth>2550</scan:MaxWidth>
      <scan:MinHeight>8</scan:MinHeight>
      <scan:MaxHeight>3508</scan:MaxHeight>
      <scan:MaxScanRegions>1</scan:MaxScanRegions>
      <scan:SettingProfiles>
        <scan:SettingProfile>
          <scan:ColorModes>
            <scan:ColorMode>Grayscale8</scan:ColorMode>
            <scan:ColorMode>RGB24</scan:ColorMode>
          </scan:ColorModes>
          <scan:ContentTypes>
            <pwg:ContentType>Photo</pwg:ContentType>
            <pwg:ContentType>Text</pwg:ContentType>
            <pwg:ContentType>TextAndPhoto</pwg:ContentType>
          </scan:ContentTypes>
          <scan:DocumentFormats>
            <pwg:DocumentFormat>image/jpeg</pwg:DocumentFormat>
            <pwg:DocumentFormat>application/pdf</pwg:DocumentFormat>
            <scan:DocumentFormatExt>image/jpeg</scan:DocumentFormatExt>
            <scan:DocumentFormatExt>application/pdf</scan:DocumentFormatExt>
          </scan:DocumentFormats>
          <scan:SupportedResolutions>
            <scan:DiscreteResolutions>
              <scan:DiscreteResolution>
                <scan:XResolution>75</scan:XResolution>
                <scan:YResolution>75</scan:YResolution>
              </scan:DiscreteResolution>
              <scan:DiscreteResolution>
                <scan:XResolution>300</scan:XResolution>
                <scan:YResolution>300</scan:YResolution>
              </scan:DiscreteResolution>
              <scan:DiscreteResolution>
                <scan:XResolution>600</scan:XResolution>
                <scan:YResolution>600</scan:YResolution>
              </scan:DiscreteResolution>
            </scan:DiscreteResolutions>
          </scan:SupportedResolutions>
          <scan:ColorSpaces>
            <scan:ColorSpace>sRGB</scan:ColorSpace>
          </scan:ColorSpaces>
          <scan:CcdChannels>
            <scan:CcdChannel>NTSC</scan:CcdChannel>
          </scan:CcdChannels>
        </scan:SettingProfile>
      </scan:SettingProfiles>
      <scan:SupportedIntents>
        <scan:Intent>Document</scan:Intent>
        <scan:Intent>TextAndGraphic</scan:Intent>
        <scan:Intent>Photo</scan:Intent>
        <scan:Intent>Preview</scan:Intent>
      </scan:SupportedIntents>
      <scan:MaxOpticalXResolution>600</scan:MaxOpticalXResolution>
      <scan:MaxOpticalYResolution>600</scan:MaxOpticalYResolution>
      <scan:RiskyLeftMargin>0</scan:RiskyLeftMargin>
      <scan:RiskyRightMargin>0</scan:RiskyRightMargin>
      <scan:RiskyTopMargin>0</scan:RiskyTopMargin>
      <scan:RiskyBottomMargin>0</scan:RiskyBottomMargin>
    </scan:PlatenInputCaps>
  </scan:Platen>
  <scan:CompressionFactorSupport>
    <scan:Min>0</scan:Min>
    <scan:Max>100</scan:Max>
    <scan:Normal>25</scan:Normal>
    <scan:Step>1</scan:Step>
  </scan:CompressionFactorSupport>
  <scan:SupportedMediaTypes>
    <scan:MediaType>plain</scan:MediaType>
  </scan:SupportedMediaTypes>
  <scan:SharpenSupport>
    <scan:Min>0</scan:Min>
    <scan:Max>5</scan:Max>
    <scan:Normal>3</scan:Normal>
    <scan:Step>1</scan:Step>
  </scan:SharpenSupport>
  <scan:VendorSection>ignored</scan:VendorSection>
</scan:ScannerCapabilities>`

const statusXML = `<?xml version="1.0" encoding="UTF-8"?>
<scan:ScannerStatus xmlns:pwg="http://www.pwg.org/schemas/2010/12/sm" xmlns:scan="http://schemas.hp.com/imaging/escl/2011/05/03">
  <pwg:Version>2.63</pwg:Version>
  <pwg:State>Processing</pwg:State>
  <scan:AdfState>ScannerAdfEmpty</scan:AdfState>
  <scan:Jobs>
    <scan:JobInfo>
      <pwg:JobUri>/eSCL/ScanJobs/42</pwg:JobUri>
      <pwg:JobUuid>c5b0a4f3-0001</pwg:JobUuid>
      <scan:Age>12</scan:Age>
      <pwg:ImagesCompleted>1</pwg:ImagesCompleted>
      <pwg:ImagesToTransfer>1</pwg:ImagesToTransfer>
      <pwg:JobState>Processing</pwg:JobState>
      <pwg:JobStateReasons>
        <pwg:JobStateReason>JobScanning</pwg:JobStateReason>
      </pwg:JobStateReasons>
    </scan:JobInfo>
    <scan:JobInfo>
      <pwg:JobUri>/eSCL/ScanJobs/41</pwg:JobUri>
      <pwg:JobUuid>c5b0a4f3-0000</pwg:JobUuid>
      <scan:Age>310</scan:Age>
      <pwg:ImagesCompleted>2</pwg:ImagesCompleted>
      <pwg:ImagesToTransfer>0</pwg:ImagesToTransfer>
      <pwg:JobState>Completed</pwg:JobState>
      <pwg:JobStateReasons>
        <pwg:JobStateReason>JobCompletedSuccessfully</pwg:JobStateReason>
      </pwg:JobStateReasons>
    </scan:JobInfo>
  </scan:Jobs>
</scan:ScannerStatus>`
