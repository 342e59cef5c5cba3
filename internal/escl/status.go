package escl

import "encoding/xml"

// ScannerStatus is the decoded scan:ScannerStatus document. It is a snapshot;
// fetch it again to observe changes.
type ScannerStatus struct {
	XMLName xml.Name `xml:"ScannerStatus" json:"-" yaml:"-"`

	Version string       `xml:"Version" json:"version" yaml:"version"`
	State   ScannerState `xml:"State" json:"state" yaml:"state"`
	// AdfState is empty when the device has no feeder or does not report it
	AdfState string    `xml:"AdfState" json:"adf_state,omitempty" yaml:"adf_state,omitempty"`
	Jobs     []JobInfo `xml:"Jobs>JobInfo" json:"jobs,omitempty" yaml:"jobs,omitempty"`
}

// JobInfo summarises one job the device knows about
type JobInfo struct {
	JobURI           string   `xml:"JobUri" json:"job_uri" yaml:"job_uri"`
	JobUUID          string   `xml:"JobUuid" json:"job_uuid" yaml:"job_uuid"`
	Age              int      `xml:"Age" json:"age" yaml:"age"`
	ImagesCompleted  int      `xml:"ImagesCompleted" json:"images_completed" yaml:"images_completed"`
	ImagesToTransfer int      `xml:"ImagesToTransfer" json:"images_to_transfer" yaml:"images_to_transfer"`
	JobState         JobState `xml:"JobState" json:"job_state" yaml:"job_state"`
	JobStateReasons  []string `xml:"JobStateReasons>JobStateReason" json:"job_state_reasons,omitempty" yaml:"job_state_reasons,omitempty"`
}

// DecodeStatus parses a ScannerStatus document
func DecodeStatus(data []byte) (*ScannerStatus, error) {
	var status ScannerStatus
	if err := xml.Unmarshal(data, &status); err != nil {
		return nil, NewDecodeError("failed to decode ScannerStatus", "", data, err)
	}
	return &status, nil
}

// FindJob returns the job whose URI matches uri, comparing by path so that
// absolute and relative forms match
func (s *ScannerStatus) FindJob(uri string) (*JobInfo, bool) {
	want := jobPath(uri)
	for i := range s.Jobs {
		if jobPath(s.Jobs[i].JobURI) == want {
			return &s.Jobs[i], true
		}
	}
	return nil, false
}
