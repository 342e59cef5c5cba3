package escl

import "strings"

// The eSCL enumerations are open: devices routinely report vendor values that
// are not in the schema. Each type below is a string with the schema values
// as constants; any other token decodes unchanged and reports Known() == false.

// ColorMode is a scan colour mode (scan:ColorMode)
type ColorMode string

const (
	ColorModeBlackAndWhite1 ColorMode = "BlackAndWhite1"
	ColorModeGrayscale8     ColorMode = "Grayscale8"
	ColorModeGrayscale16    ColorMode = "Grayscale16"
	ColorModeRGB24          ColorMode = "RGB24"
	ColorModeRGB48          ColorMode = "RGB48"
)

// Known reports whether m is one of the schema values
func (m ColorMode) Known() bool {
	switch m {
	case ColorModeBlackAndWhite1, ColorModeGrayscale8, ColorModeGrayscale16, ColorModeRGB24, ColorModeRGB48:
		return true
	}
	return false
}

func (m *ColorMode) UnmarshalText(text []byte) error {
	*m = ColorMode(strings.TrimSpace(string(text)))
	return nil
}

// ContentType describes the kind of original being scanned
type ContentType string

const (
	ContentTypePhoto        ContentType = "Photo"
	ContentTypeText         ContentType = "Text"
	ContentTypeTextAndPhoto ContentType = "TextAndPhoto"
	ContentTypeLineArt      ContentType = "LineArt"
	ContentTypeMagazine     ContentType = "Magazine"
	ContentTypeHalftone     ContentType = "Halftone"
	ContentTypeAuto         ContentType = "Auto"
)

// Known reports whether c is one of the schema values
func (c ContentType) Known() bool {
	switch c {
	case ContentTypePhoto, ContentTypeText, ContentTypeTextAndPhoto, ContentTypeLineArt,
		ContentTypeMagazine, ContentTypeHalftone, ContentTypeAuto:
		return true
	}
	return false
}

func (c *ContentType) UnmarshalText(text []byte) error {
	*c = ContentType(strings.TrimSpace(string(text)))
	return nil
}

// ScanIntent is the caller's purpose for a scan, used by the device to pick defaults
type ScanIntent string

const (
	IntentDocument       ScanIntent = "Document"
	IntentTextAndGraphic ScanIntent = "TextAndGraphic"
	IntentPhoto          ScanIntent = "Photo"
	IntentPreview        ScanIntent = "Preview"
	IntentObject         ScanIntent = "Object"
	IntentBusinessCard   ScanIntent = "BusinessCard"
)

// Known reports whether i is one of the schema values
func (i ScanIntent) Known() bool {
	switch i {
	case IntentDocument, IntentTextAndGraphic, IntentPhoto, IntentPreview, IntentObject, IntentBusinessCard:
		return true
	}
	return false
}

func (i *ScanIntent) UnmarshalText(text []byte) error {
	*i = ScanIntent(strings.TrimSpace(string(text)))
	return nil
}

// CcdChannel is the sensor channel used for grayscale capture
type CcdChannel string

const (
	CcdChannelRed             CcdChannel = "Red"
	CcdChannelGreen           CcdChannel = "Green"
	CcdChannelBlue            CcdChannel = "Blue"
	CcdChannelNTSC            CcdChannel = "NTSC"
	CcdChannelGrayCcd         CcdChannel = "GrayCcd"
	CcdChannelGrayCcdEmulated CcdChannel = "GrayCcdEmulated"
)

// Known reports whether c is one of the schema values
func (c CcdChannel) Known() bool {
	switch c {
	case CcdChannelRed, CcdChannelGreen, CcdChannelBlue, CcdChannelNTSC, CcdChannelGrayCcd, CcdChannelGrayCcdEmulated:
		return true
	}
	return false
}

func (c *CcdChannel) UnmarshalText(text []byte) error {
	*c = CcdChannel(strings.TrimSpace(string(text)))
	return nil
}

// InputSource selects where the original is read from
type InputSource string

const (
	// InputSourcePlaten is the glass flatbed
	InputSourcePlaten InputSource = "Platen"
	// InputSourceFeeder is the automatic document feeder
	InputSourceFeeder InputSource = "Feeder"
	InputSourceCamera InputSource = "Camera"
)

// Known reports whether s is one of the schema values
func (s InputSource) Known() bool {
	switch s {
	case InputSourcePlaten, InputSourceFeeder, InputSourceCamera:
		return true
	}
	return false
}

func (s *InputSource) UnmarshalText(text []byte) error {
	*s = InputSource(strings.TrimSpace(string(text)))
	return nil
}

// ScannerState is the device-level state reported by ScannerStatus
type ScannerState string

const (
	StateIdle       ScannerState = "Idle"
	StateProcessing ScannerState = "Processing"
	// StateTesting is reported while the unit calibrates or warms up
	StateTesting ScannerState = "Testing"
	StateStopped ScannerState = "Stopped"
	// StateDown means the unit is unavailable
	StateDown ScannerState = "Down"
)

// Known reports whether s is one of the schema values
func (s ScannerState) Known() bool {
	switch s {
	case StateIdle, StateProcessing, StateTesting, StateStopped, StateDown:
		return true
	}
	return false
}

func (s *ScannerState) UnmarshalText(text []byte) error {
	*s = ScannerState(strings.TrimSpace(string(text)))
	return nil
}

// JobState is the state of one job listed in ScannerStatus
type JobState string

const (
	JobStateCanceled   JobState = "Canceled"
	JobStateAborted    JobState = "Aborted"
	JobStateCompleted  JobState = "Completed"
	JobStatePending    JobState = "Pending"
	JobStateProcessing JobState = "Processing"
)

// Known reports whether s is one of the schema values
func (s JobState) Known() bool {
	switch s {
	case JobStateCanceled, JobStateAborted, JobStateCompleted, JobStatePending, JobStateProcessing:
		return true
	}
	return false
}

// Terminal reports whether the job has reached an end state
func (s JobState) Terminal() bool {
	return s == JobStateCanceled || s == JobStateAborted || s == JobStateCompleted
}

func (s *JobState) UnmarshalText(text []byte) error {
	*s = JobState(strings.TrimSpace(string(text)))
	return nil
}
