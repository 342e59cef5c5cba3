package escl

import (
	"encoding/xml"
	"reflect"
	"strings"
	"testing"
)

func fullSettings() *ScanSettings {
	return &ScanSettings{
		Version: "2.63",
		Intent:  Ptr(IntentDocument),
		Region: &ScanRegion{
			Height:  3508,
			Units:   ThreeHundredthsOfInches,
			Width:   2550,
			XOffset: 10,
			YOffset: 20,
		},
		DocumentFormat:     Ptr("application/pdf"),
		DocumentFormatExt:  Ptr("application/pdf"),
		InputSource:        Ptr(InputSourcePlaten),
		XResolution:        Ptr(300),
		YResolution:        Ptr(300),
		ColorMode:          Ptr(ColorModeRGB24),
		Duplex:             Ptr(false),
		CompressionFactor:  Ptr(25),
		BlankPageDetection: Ptr(true),
	}
}

func TestEncodeSettings_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		settings *ScanSettings
	}{
		{"all fields", fullSettings()},
		{"version only", &ScanSettings{Version: "2.0"}},
		{"resolution and color", &ScanSettings{
			Version:     "2.0",
			XResolution: Ptr(600),
			YResolution: Ptr(600),
			ColorMode:   Ptr(ColorModeGrayscale8),
		}},
		{"unknown tokens", &ScanSettings{
			Version:   "2.0",
			Intent:    Ptr(ScanIntent("Whiteboard")),
			ColorMode: Ptr(ColorMode("CMYK32")),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeSettings(tt.settings)
			if err != nil {
				t.Fatalf("EncodeSettings() error = %v", err)
			}

			got, err := DecodeSettings(data)
			if err != nil {
				t.Fatalf("DecodeSettings() error = %v\n%s", err, data)
			}
			got.XMLName = xml.Name{}

			if !reflect.DeepEqual(got, tt.settings) {
				t.Errorf("round trip mismatch\n got: %+v\nwant: %+v\n%s", got, tt.settings, data)
			}
		})
	}
}

func TestEncodeSettings_Prefixes(t *testing.T) {
	data, err := EncodeSettings(fullSettings())
	if err != nil {
		t.Fatalf("EncodeSettings() error = %v", err)
	}
	doc := string(data)

	wants := []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<scan:ScanSettings xmlns:scan="http://schemas.hp.com/imaging/escl/2011/05/03" xmlns:pwg="http://www.pwg.org/schemas/2010/12/sm">`,
		`<pwg:Version>2.63</pwg:Version>`,
		`<scan:Intent>Document</scan:Intent>`,
		`<pwg:ContentRegionUnits>escl:ThreeHundredthsOfInches</pwg:ContentRegionUnits>`,
		`<pwg:Width>2550</pwg:Width>`,
		`<pwg:XOffset>10</pwg:XOffset>`,
		`<pwg:DocumentFormat>application/pdf</pwg:DocumentFormat>`,
		`<scan:DocumentFormatExt>application/pdf</scan:DocumentFormatExt>`,
		`<pwg:InputSource>Platen</pwg:InputSource>`,
		`<scan:XResolution>300</scan:XResolution>`,
		`<scan:ColorMode>RGB24</scan:ColorMode>`,
		`<scan:Duplex>false</scan:Duplex>`,
		`<scan:CompressionFactor>25</scan:CompressionFactor>`,
		`<scan:BlankPageDetection>true</scan:BlankPageDetection>`,
		`</scan:ScanSettings>`,
	}
	for _, want := range wants {
		if !strings.Contains(doc, want) {
			t.Errorf("encoded settings missing %q\n%s", want, doc)
		}
	}
}

func TestEncodeSettings_ElementOrder(t *testing.T) {
	data, err := EncodeSettings(fullSettings())
	if err != nil {
		t.Fatalf("EncodeSettings() error = %v", err)
	}
	doc := string(data)

	order := []string{
		"<pwg:Version>",
		"<scan:Intent>",
		"<pwg:ScanRegions>",
		"<pwg:DocumentFormat>",
		"<scan:DocumentFormatExt>",
		"<pwg:InputSource>",
		"<scan:XResolution>",
		"<scan:YResolution>",
		"<scan:ColorMode>",
		"<scan:Duplex>",
		"<scan:CompressionFactor>",
		"<scan:BlankPageDetection>",
	}
	last := -1
	for _, elem := range order {
		idx := strings.Index(doc, elem)
		if idx < 0 {
			t.Fatalf("missing %s", elem)
		}
		if idx < last {
			t.Errorf("%s appears out of schema order", elem)
		}
		last = idx
	}
}

func TestEncodeSettings_OmitsAbsentFields(t *testing.T) {
	data, err := EncodeSettings(&ScanSettings{Version: "2.0"})
	if err != nil {
		t.Fatalf("EncodeSettings() error = %v", err)
	}
	doc := string(data)

	absent := []string{
		"Intent", "ScanRegions", "DocumentFormat", "InputSource",
		"XResolution", "YResolution", "ColorMode", "Duplex",
		"CompressionFactor", "BlankPageDetection",
	}
	for _, name := range absent {
		if strings.Contains(doc, name) {
			t.Errorf("encoded settings should not mention %s\n%s", name, doc)
		}
	}
	if !strings.Contains(doc, "<pwg:Version>2.0</pwg:Version>") {
		t.Errorf("Version missing\n%s", doc)
	}
}

func TestEncodeSettings_DefaultRegionUnits(t *testing.T) {
	data, err := EncodeSettings(&ScanSettings{
		Version: "2.0",
		Region:  &ScanRegion{Width: 100, Height: 200},
	})
	if err != nil {
		t.Fatalf("EncodeSettings() error = %v", err)
	}
	if !strings.Contains(string(data), "<pwg:ContentRegionUnits>escl:ThreeHundredthsOfInches</pwg:ContentRegionUnits>") {
		t.Errorf("region without units should use the protocol unit\n%s", data)
	}
}

func TestEncodeSettings_EscapesText(t *testing.T) {
	data, err := EncodeSettings(&ScanSettings{
		Version:           "2.0",
		DocumentFormatExt: Ptr("image/x<odd>&"),
	})
	if err != nil {
		t.Fatalf("EncodeSettings() error = %v", err)
	}
	if strings.Contains(string(data), "x<odd>") {
		t.Errorf("text content was not escaped\n%s", data)
	}

	got, err := DecodeSettings(data)
	if err != nil {
		t.Fatalf("DecodeSettings() error = %v", err)
	}
	if *got.DocumentFormatExt != "image/x<odd>&" {
		t.Errorf("DocumentFormatExt = %q", *got.DocumentFormatExt)
	}
}
