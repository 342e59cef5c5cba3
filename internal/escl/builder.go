package escl

import (
	"fmt"
	"slices"
)

// DefaultVersion is sent when no capabilities are available to copy it from
const DefaultVersion = "2.0"

// PreferredColorMode picks the highest-fidelity RGB mode in modes: RGB48 over
// RGB24. Grayscale and black-and-white modes are never picked. The result
// does not depend on the order of modes.
func PreferredColorMode(modes []ColorMode) (ColorMode, bool) {
	for _, want := range []ColorMode{ColorModeRGB48, ColorModeRGB24} {
		if slices.Contains(modes, want) {
			return want, true
		}
	}
	return "", false
}

// SettingsBuilder derives ScanSettings from a device's capabilities plus
// caller overrides, and checks the overrides against what the device
// advertises.
//
// Example usage:
//
//	settings, err := escl.NewSettingsBuilder(caps).
//	    SetResolution(300, 300).
//	    SetDocumentFormat("image/jpeg").
//	    Build()
type SettingsBuilder struct {
	caps *Capabilities

	intent             *ScanIntent
	region             *ScanRegion
	documentFormat     *string
	inputSource        *InputSource
	xResolution        *int
	yResolution        *int
	colorMode          *ColorMode
	duplex             *bool
	compressionFactor  *int
	blankPageDetection *bool
}

// NewSettingsBuilder creates a builder. Pass nil caps to skip both defaults
// and validation; the result then only contains what was set explicitly.
func NewSettingsBuilder(caps *Capabilities) *SettingsBuilder {
	return &SettingsBuilder{caps: caps}
}

// SetIntent sets the scan intent
func (b *SettingsBuilder) SetIntent(intent ScanIntent) *SettingsBuilder {
	b.intent = &intent
	return b
}

// SetRegion sets the scan area in 1/300 inch
func (b *SettingsBuilder) SetRegion(width, height, xOffset, yOffset int) *SettingsBuilder {
	b.region = &ScanRegion{
		Width:   width,
		Height:  height,
		XOffset: xOffset,
		YOffset: yOffset,
		Units:   ThreeHundredthsOfInches,
	}
	return b
}

// SetDocumentFormat sets the output MIME type (e.g. "image/jpeg", "application/pdf")
func (b *SettingsBuilder) SetDocumentFormat(mime string) *SettingsBuilder {
	b.documentFormat = &mime
	return b
}

// SetInputSource selects platen or feeder
func (b *SettingsBuilder) SetInputSource(source InputSource) *SettingsBuilder {
	b.inputSource = &source
	return b
}

// SetResolution sets the X and Y resolution in DPI
func (b *SettingsBuilder) SetResolution(x, y int) *SettingsBuilder {
	b.xResolution = &x
	b.yResolution = &y
	return b
}

// SetColorMode overrides automatic colour mode selection
func (b *SettingsBuilder) SetColorMode(mode ColorMode) *SettingsBuilder {
	b.colorMode = &mode
	return b
}

// SetDuplex requests double-sided feeder scanning
func (b *SettingsBuilder) SetDuplex(duplex bool) *SettingsBuilder {
	b.duplex = &duplex
	return b
}

// SetCompressionFactor sets the device compression factor
func (b *SettingsBuilder) SetCompressionFactor(factor int) *SettingsBuilder {
	b.compressionFactor = &factor
	return b
}

// SetBlankPageDetection enables or disables blank page skipping
func (b *SettingsBuilder) SetBlankPageDetection(enabled bool) *SettingsBuilder {
	b.blankPageDetection = &enabled
	return b
}

// source returns the input source the settings will target: the explicit
// one, else the first the device advertises (platen before feeder)
func (b *SettingsBuilder) source() (InputSource, bool) {
	if b.inputSource != nil {
		return *b.inputSource, true
	}
	if b.caps != nil {
		if sources := b.caps.InputSources(); len(sources) > 0 {
			return sources[0], true
		}
	}
	return "", false
}

// Validate checks explicit overrides against the capabilities
func (b *SettingsBuilder) Validate() error {
	if b.region != nil {
		r := b.region
		if r.Width <= 0 || r.Height <= 0 {
			return NewValidationError(fmt.Sprintf("scan region must have a positive size, got %dx%d", r.Width, r.Height))
		}
		if r.XOffset < 0 || r.YOffset < 0 {
			return NewValidationError(fmt.Sprintf("scan region offsets cannot be negative, got %d,%d", r.XOffset, r.YOffset))
		}
	}
	if b.xResolution != nil && (*b.xResolution <= 0 || *b.yResolution <= 0) {
		return NewValidationError(fmt.Sprintf("resolution must be positive, got %dx%d", *b.xResolution, *b.yResolution))
	}

	if b.caps == nil {
		return nil
	}

	source, ok := b.source()
	if !ok {
		return NewValidationError("device advertises no input source")
	}
	ic := b.caps.InputCaps(source)
	if ic == nil {
		return NewValidationError(fmt.Sprintf("device does not support input source %q", source))
	}

	if b.region != nil {
		r := b.region
		if r.Width < ic.MinWidth || r.XOffset+r.Width > ic.MaxWidth {
			return NewValidationError(fmt.Sprintf("scan width %d at offset %d outside device range %d-%d", r.Width, r.XOffset, ic.MinWidth, ic.MaxWidth))
		}
		if r.Height < ic.MinHeight || r.YOffset+r.Height > ic.MaxHeight {
			return NewValidationError(fmt.Sprintf("scan height %d at offset %d outside device range %d-%d", r.Height, r.YOffset, ic.MinHeight, ic.MaxHeight))
		}
	}

	if b.xResolution != nil {
		want := Resolution{X: *b.xResolution, Y: *b.yResolution}
		if res := ic.Resolutions(); len(res) > 0 && !slices.Contains(res, want) {
			return NewValidationError(fmt.Sprintf("resolution %dx%d not supported (supported: %v)", want.X, want.Y, res))
		}
	}

	if b.colorMode != nil {
		if modes := ic.ColorModes(); len(modes) > 0 && !slices.Contains(modes, *b.colorMode) {
			return NewValidationError(fmt.Sprintf("color mode %q not supported (supported: %v)", *b.colorMode, modes))
		}
	}

	if b.documentFormat != nil {
		if formats := ic.DocumentFormats(); len(formats) > 0 && !slices.Contains(formats, *b.documentFormat) {
			return NewValidationError(fmt.Sprintf("document format %q not supported (supported: %v)", *b.documentFormat, formats))
		}
	}

	if b.intent != nil && len(ic.SupportedIntents) > 0 && !slices.Contains(ic.SupportedIntents, *b.intent) {
		return NewValidationError(fmt.Sprintf("intent %q not supported (supported: %v)", *b.intent, ic.SupportedIntents))
	}

	if b.duplex != nil && *b.duplex && b.caps.AdfDuplex == nil {
		return NewValidationError("device does not support duplex scanning")
	}

	if b.compressionFactor != nil && b.caps.CompressionFactorSupport != nil &&
		!b.caps.CompressionFactorSupport.Contains(*b.compressionFactor) {
		cf := b.caps.CompressionFactorSupport
		return NewValidationError(fmt.Sprintf("compression factor %d outside device range %d-%d", *b.compressionFactor, cf.Min, cf.Max))
	}

	return nil
}

// Build validates the overrides and fills capability-derived defaults: the
// protocol version, the first advertised input source, the full input area as the
// region, and the preferred RGB colour mode.
func (b *SettingsBuilder) Build() (*ScanSettings, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	s := &ScanSettings{
		Version:            DefaultVersion,
		Intent:             b.intent,
		Region:             b.region,
		DocumentFormatExt:  b.documentFormat,
		InputSource:        b.inputSource,
		XResolution:        b.xResolution,
		YResolution:        b.yResolution,
		ColorMode:          b.colorMode,
		Duplex:             b.duplex,
		CompressionFactor:  b.compressionFactor,
		BlankPageDetection: b.blankPageDetection,
	}

	if b.caps == nil {
		return s, nil
	}

	if b.caps.Version != "" {
		s.Version = b.caps.Version
	}

	source, _ := b.source()
	s.InputSource = &source
	ic := b.caps.InputCaps(source)

	if s.Region == nil && ic.MaxWidth > 0 && ic.MaxHeight > 0 {
		s.Region = &ScanRegion{
			Width:  ic.MaxWidth,
			Height: ic.MaxHeight,
			Units:  ThreeHundredthsOfInches,
		}
	}

	if s.ColorMode == nil {
		if mode, ok := PreferredColorMode(ic.ColorModes()); ok {
			s.ColorMode = &mode
		}
	}

	// Older firmware only reads pwg:DocumentFormat
	if s.DocumentFormatExt != nil {
		for _, p := range ic.SettingProfiles {
			if slices.Contains(p.DocumentFormats, *s.DocumentFormatExt) {
				s.DocumentFormat = Ptr(*s.DocumentFormatExt)
				break
			}
		}
	}

	return s, nil
}
