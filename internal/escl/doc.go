// Package escl implements a client for the eSCL (AirScan) network scanning
// protocol.
//
// eSCL is plain HTTP with XML bodies. A scanner exposes a root resource,
// usually /eSCL, with three fixed children:
//
//	GET  <root>/ScannerCapabilities   what the device can do
//	GET  <root>/ScannerStatus         what it is doing now
//	POST <root>/ScanJobs              start a job (201 + Location)
//
// and every job exposes <job>/NextDocument, which returns one page per call
// and 404 once the job has nothing left.
//
// # Usage Example
//
//	client, err := escl.NewClient("http://192.168.1.20/eSCL")
//	if err != nil {
//	    return err
//	}
//
//	caps, err := client.GetCapabilities(ctx)
//	if err != nil {
//	    return err
//	}
//
//	settings, err := escl.NewSettingsBuilder(caps).
//	    SetResolution(300, 300).
//	    SetDocumentFormat("image/jpeg").
//	    Build()
//	if err != nil {
//	    return err
//	}
//
//	job, err := client.SubmitScan(ctx, settings)
//	if err != nil {
//	    return err
//	}
//
//	for {
//	    doc, err := job.NextDocument(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    save(doc.Data)
//	}
//
// # Errors
//
// Every failure is a *DeviceError whose Type tells transport failures,
// undecodable documents, unexpected status codes and a missing job Location
// apart. Nothing is retried; callers decide.
//
// # Vendor Variance
//
// Devices disagree on whether some elements repeat, and many report values
// outside the schema. List-like fields are always slices, and enumerations
// are open string types that keep unknown tokens (see ColorMode.Known).
package escl
