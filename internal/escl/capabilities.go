package escl

import (
	"encoding/xml"
	"slices"
)

// Capabilities is the decoded scan:ScannerCapabilities document.
//
// Field tags use local element names only, so the document decodes whatever
// prefixes the device binds to the scan and pwg namespaces. Every field that
// some devices send once and others repeat is a slice; a single element
// decodes to a one-entry slice. Identity fields are empty when the device
// omits them.
type Capabilities struct {
	XMLName xml.Name `xml:"ScannerCapabilities" json:"-" yaml:"-"`

	Version      string `xml:"Version" json:"version" yaml:"version"`
	MakeAndModel string `xml:"MakeAndModel" json:"make_and_model,omitempty" yaml:"make_and_model,omitempty"`
	Manufacturer string `xml:"Manufacturer" json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	SerialNumber string `xml:"SerialNumber" json:"serial_number,omitempty" yaml:"serial_number,omitempty"`
	UUID         string `xml:"UUID" json:"uuid,omitempty" yaml:"uuid,omitempty"`
	AdminURI     string `xml:"AdminURI" json:"admin_uri,omitempty" yaml:"admin_uri,omitempty"`
	IconURI      string `xml:"IconURI" json:"icon_uri,omitempty" yaml:"icon_uri,omitempty"`

	Certifications []Certification `xml:"Certifications>Certification" json:"certifications,omitempty" yaml:"certifications,omitempty"`

	// Platen is the flatbed; nil when the device has none
	Platen *InputCaps `xml:"Platen>PlatenInputCaps" json:"platen,omitempty" yaml:"platen,omitempty"`
	// AdfSimplex and AdfDuplex describe the document feeder
	AdfSimplex *InputCaps `xml:"Adf>AdfSimplexInputCaps" json:"adf_simplex,omitempty" yaml:"adf_simplex,omitempty"`
	AdfDuplex  *InputCaps `xml:"Adf>AdfDuplexInputCaps" json:"adf_duplex,omitempty" yaml:"adf_duplex,omitempty"`

	CompressionFactorSupport *Range   `xml:"CompressionFactorSupport" json:"compression_factor_support,omitempty" yaml:"compression_factor_support,omitempty"`
	SharpenSupport           *Range   `xml:"SharpenSupport" json:"sharpen_support,omitempty" yaml:"sharpen_support,omitempty"`
	SupportedMediaTypes      []string `xml:"SupportedMediaTypes>MediaType" json:"supported_media_types,omitempty" yaml:"supported_media_types,omitempty"`
}

// Certification names a standard the device claims conformance with
type Certification struct {
	Name    string `xml:"Name" json:"name" yaml:"name"`
	Version string `xml:"Version" json:"version" yaml:"version"`
}

// InputCaps holds the limits of one input source. Dimensions are in
// 1/300 inch.
type InputCaps struct {
	MinWidth       int `xml:"MinWidth" json:"min_width" yaml:"min_width"`
	MaxWidth       int `xml:"MaxWidth" json:"max_width" yaml:"max_width"`
	MinHeight      int `xml:"MinHeight" json:"min_height" yaml:"min_height"`
	MaxHeight      int `xml:"MaxHeight" json:"max_height" yaml:"max_height"`
	MaxScanRegions int `xml:"MaxScanRegions" json:"max_scan_regions,omitempty" yaml:"max_scan_regions,omitempty"`

	SettingProfiles  []SettingProfile `xml:"SettingProfiles>SettingProfile" json:"setting_profiles" yaml:"setting_profiles"`
	SupportedIntents []ScanIntent     `xml:"SupportedIntents>Intent" json:"supported_intents,omitempty" yaml:"supported_intents,omitempty"`

	MaxOpticalXResolution int `xml:"MaxOpticalXResolution" json:"max_optical_x_resolution,omitempty" yaml:"max_optical_x_resolution,omitempty"`
	MaxOpticalYResolution int `xml:"MaxOpticalYResolution" json:"max_optical_y_resolution,omitempty" yaml:"max_optical_y_resolution,omitempty"`
	RiskyLeftMargin       int `xml:"RiskyLeftMargin" json:"risky_left_margin,omitempty" yaml:"risky_left_margin,omitempty"`
	RiskyRightMargin      int `xml:"RiskyRightMargin" json:"risky_right_margin,omitempty" yaml:"risky_right_margin,omitempty"`
	RiskyTopMargin        int `xml:"RiskyTopMargin" json:"risky_top_margin,omitempty" yaml:"risky_top_margin,omitempty"`
	RiskyBottomMargin     int `xml:"RiskyBottomMargin" json:"risky_bottom_margin,omitempty" yaml:"risky_bottom_margin,omitempty"`
}

// SettingProfile is one combination of supported settings
type SettingProfile struct {
	ColorModes         []ColorMode   `xml:"ColorModes>ColorMode" json:"color_modes" yaml:"color_modes"`
	ContentTypes       []ContentType `xml:"ContentTypes>ContentType" json:"content_types,omitempty" yaml:"content_types,omitempty"`
	DocumentFormats    []string      `xml:"DocumentFormats>DocumentFormat" json:"document_formats,omitempty" yaml:"document_formats,omitempty"`
	DocumentFormatsExt []string      `xml:"DocumentFormats>DocumentFormatExt" json:"document_formats_ext,omitempty" yaml:"document_formats_ext,omitempty"`
	Resolutions        []Resolution  `xml:"SupportedResolutions>DiscreteResolutions>DiscreteResolution" json:"resolutions,omitempty" yaml:"resolutions,omitempty"`
	ColorSpaces        []string      `xml:"ColorSpaces>ColorSpace" json:"color_spaces,omitempty" yaml:"color_spaces,omitempty"`
	CcdChannels        []CcdChannel  `xml:"CcdChannels>CcdChannel" json:"ccd_channels,omitempty" yaml:"ccd_channels,omitempty"`
}

// Resolution is a discrete X/Y resolution pair in DPI
type Resolution struct {
	X int `xml:"XResolution" json:"x" yaml:"x"`
	Y int `xml:"YResolution" json:"y" yaml:"y"`
}

// Range describes a min/max/normal/step integer setting
type Range struct {
	Min    int `xml:"Min" json:"min" yaml:"min"`
	Max    int `xml:"Max" json:"max" yaml:"max"`
	Normal int `xml:"Normal" json:"normal" yaml:"normal"`
	Step   int `xml:"Step" json:"step" yaml:"step"`
}

// Contains reports whether v lies within the range
func (r *Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// DecodeCapabilities parses a ScannerCapabilities document. Unknown elements
// are ignored; a malformed document or a different root element is a
// DecodeError.
func DecodeCapabilities(data []byte) (*Capabilities, error) {
	var caps Capabilities
	if err := xml.Unmarshal(data, &caps); err != nil {
		return nil, NewDecodeError("failed to decode ScannerCapabilities", "", data, err)
	}
	return &caps, nil
}

// InputCaps returns the limits for the given source, or nil if the device
// does not advertise it. Feeder prefers the simplex description.
func (c *Capabilities) InputCaps(source InputSource) *InputCaps {
	switch source {
	case InputSourcePlaten:
		return c.Platen
	case InputSourceFeeder:
		if c.AdfSimplex != nil {
			return c.AdfSimplex
		}
		return c.AdfDuplex
	}
	return nil
}

// InputSources lists the sources the device advertises
func (c *Capabilities) InputSources() []InputSource {
	var sources []InputSource
	if c.Platen != nil {
		sources = append(sources, InputSourcePlaten)
	}
	if c.AdfSimplex != nil || c.AdfDuplex != nil {
		sources = append(sources, InputSourceFeeder)
	}
	return sources
}

// ColorModes returns every colour mode across all setting profiles, first
// occurrence order, without duplicates
func (ic *InputCaps) ColorModes() []ColorMode {
	var modes []ColorMode
	for _, p := range ic.SettingProfiles {
		for _, m := range p.ColorModes {
			if !slices.Contains(modes, m) {
				modes = append(modes, m)
			}
		}
	}
	return modes
}

// Resolutions returns every discrete resolution across all setting profiles
func (ic *InputCaps) Resolutions() []Resolution {
	var res []Resolution
	for _, p := range ic.SettingProfiles {
		for _, r := range p.Resolutions {
			if !slices.Contains(res, r) {
				res = append(res, r)
			}
		}
	}
	return res
}

// DocumentFormats returns every advertised MIME type, both the pwg and the
// scan extension lists
func (ic *InputCaps) DocumentFormats() []string {
	var formats []string
	for _, p := range ic.SettingProfiles {
		for _, list := range [][]string{p.DocumentFormats, p.DocumentFormatsExt} {
			for _, f := range list {
				if !slices.Contains(formats, f) {
					formats = append(formats, f)
				}
			}
		}
	}
	return formats
}
