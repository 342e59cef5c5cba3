// Package config provides user configuration management for the escl command.
//
// This package manages a YAML-based configuration file that remembers
// scanners found by discovery (so they can be addressed by name with
// --device) and application preferences such as the discovery timeout and
// scan defaults. The configuration follows OS-specific conventions for storage
// location.
//
// # Configuration File Location
//
// The file lives at escl/config.yaml under os.UserConfigDir
// ($XDG_CONFIG_HOME or $HOME/.config on Linux). ESCL_CONFIG points
// somewhere else.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.RememberDevice("HP LaserJet", "http://192.168.1.20:80/eSCL", "HP LaserJet MFP M28w", "")
//	registry.SetDeviceNickname("HP LaserJet", "office")
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// Writes go through a temporary file and a rename. A Registry is not safe
// for concurrent mutation.
package config
