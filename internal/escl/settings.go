package escl

import (
	"bytes"
	"encoding/xml"
	"strconv"
)

// Namespace bindings used by scan:ScanSettings. Devices match on the literal
// prefixes, so these are written verbatim rather than left to the encoder.
const (
	NamespaceScan = "http://schemas.hp.com/imaging/escl/2011/05/03"
	NamespacePWG  = "http://www.pwg.org/schemas/2010/12/sm"
)

// ContentRegionUnits is the unit of a scan region
type ContentRegionUnits string

// ThreeHundredthsOfInches is the only unit the protocol defines
const ThreeHundredthsOfInches ContentRegionUnits = "escl:ThreeHundredthsOfInches"

func (u *ContentRegionUnits) UnmarshalText(text []byte) error {
	*u = ContentRegionUnits(bytes.TrimSpace(text))
	return nil
}

// ScanSettings is the body of a job creation request. Every field other than
// Version is optional; a nil field is left out of the document entirely.
type ScanSettings struct {
	XMLName xml.Name `xml:"ScanSettings" json:"-" yaml:"-"`

	Version            string       `xml:"Version" json:"version" yaml:"version"`
	Intent             *ScanIntent  `xml:"Intent" json:"intent,omitempty" yaml:"intent,omitempty"`
	Region             *ScanRegion  `xml:"ScanRegions>ScanRegion" json:"region,omitempty" yaml:"region,omitempty"`
	DocumentFormat     *string      `xml:"DocumentFormat" json:"document_format,omitempty" yaml:"document_format,omitempty"`
	DocumentFormatExt  *string      `xml:"DocumentFormatExt" json:"document_format_ext,omitempty" yaml:"document_format_ext,omitempty"`
	InputSource        *InputSource `xml:"InputSource" json:"input_source,omitempty" yaml:"input_source,omitempty"`
	XResolution        *int         `xml:"XResolution" json:"x_resolution,omitempty" yaml:"x_resolution,omitempty"`
	YResolution        *int         `xml:"YResolution" json:"y_resolution,omitempty" yaml:"y_resolution,omitempty"`
	ColorMode          *ColorMode   `xml:"ColorMode" json:"color_mode,omitempty" yaml:"color_mode,omitempty"`
	Duplex             *bool        `xml:"Duplex" json:"duplex,omitempty" yaml:"duplex,omitempty"`
	CompressionFactor  *int         `xml:"CompressionFactor" json:"compression_factor,omitempty" yaml:"compression_factor,omitempty"`
	BlankPageDetection *bool        `xml:"BlankPageDetection" json:"blank_page_detection,omitempty" yaml:"blank_page_detection,omitempty"`
}

// ScanRegion is a rectangle on the input source, in 1/300 inch
type ScanRegion struct {
	Height  int                `xml:"Height" json:"height" yaml:"height"`
	Units   ContentRegionUnits `xml:"ContentRegionUnits" json:"units" yaml:"units"`
	Width   int                `xml:"Width" json:"width" yaml:"width"`
	XOffset int                `xml:"XOffset" json:"x_offset" yaml:"x_offset"`
	YOffset int                `xml:"YOffset" json:"y_offset" yaml:"y_offset"`
}

// Ptr returns a pointer to v, for filling optional ScanSettings fields
func Ptr[T any](v T) *T {
	return &v
}

// MarshalXML writes the settings with the scan:/pwg: prefixes the protocol
// schema fixes. Element order follows the schema.
func (s ScanSettings) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	root := xml.StartElement{
		Name: xml.Name{Local: "scan:ScanSettings"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns:scan"}, Value: NamespaceScan},
			{Name: xml.Name{Local: "xmlns:pwg"}, Value: NamespacePWG},
		},
	}
	if err := e.EncodeToken(root); err != nil {
		return err
	}

	w := &elementWriter{e: e}
	w.text("pwg:Version", s.Version)
	if s.Intent != nil {
		w.text("scan:Intent", string(*s.Intent))
	}
	if s.Region != nil {
		units := s.Region.Units
		if units == "" {
			units = ThreeHundredthsOfInches
		}
		w.open("pwg:ScanRegions")
		w.open("pwg:ScanRegion")
		w.int("pwg:Height", s.Region.Height)
		w.text("pwg:ContentRegionUnits", string(units))
		w.int("pwg:Width", s.Region.Width)
		w.int("pwg:XOffset", s.Region.XOffset)
		w.int("pwg:YOffset", s.Region.YOffset)
		w.close("pwg:ScanRegion")
		w.close("pwg:ScanRegions")
	}
	if s.DocumentFormat != nil {
		w.text("pwg:DocumentFormat", *s.DocumentFormat)
	}
	if s.DocumentFormatExt != nil {
		w.text("scan:DocumentFormatExt", *s.DocumentFormatExt)
	}
	if s.InputSource != nil {
		w.text("pwg:InputSource", string(*s.InputSource))
	}
	if s.XResolution != nil {
		w.int("scan:XResolution", *s.XResolution)
	}
	if s.YResolution != nil {
		w.int("scan:YResolution", *s.YResolution)
	}
	if s.ColorMode != nil {
		w.text("scan:ColorMode", string(*s.ColorMode))
	}
	if s.Duplex != nil {
		w.text("scan:Duplex", strconv.FormatBool(*s.Duplex))
	}
	if s.CompressionFactor != nil {
		w.int("scan:CompressionFactor", *s.CompressionFactor)
	}
	if s.BlankPageDetection != nil {
		w.text("scan:BlankPageDetection", strconv.FormatBool(*s.BlankPageDetection))
	}
	if w.err != nil {
		return w.err
	}

	return e.EncodeToken(root.End())
}

// elementWriter emits prefixed elements and keeps the first error
type elementWriter struct {
	e   *xml.Encoder
	err error
}

func (w *elementWriter) open(name string) {
	if w.err == nil {
		w.err = w.e.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}})
	}
}

func (w *elementWriter) close(name string) {
	if w.err == nil {
		w.err = w.e.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
	}
}

func (w *elementWriter) text(name, value string) {
	w.open(name)
	if w.err == nil {
		w.err = w.e.EncodeToken(xml.CharData(value))
	}
	w.close(name)
}

func (w *elementWriter) int(name string, value int) {
	w.text(name, strconv.Itoa(value))
}

// EncodeSettings renders s as a complete XML document for POST /ScanJobs
func EncodeSettings(s *ScanSettings) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecodeSettings parses a ScanSettings document. It is the inverse of
// EncodeSettings and is mostly useful for inspecting captured requests.
func DecodeSettings(data []byte) (*ScanSettings, error) {
	var s ScanSettings
	if err := xml.Unmarshal(data, &s); err != nil {
		return nil, NewDecodeError("failed to decode ScanSettings", "", data, err)
	}
	return &s, nil
}
