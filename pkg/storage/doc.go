// Package storage provides file management for downloaded photos.
//
// The storage package handles:
//   - Creating the output directory
//   - Positional file naming ({position:05d}.jpg)
//   - Saving photos with atomic write operations
//   - Verifying payloads decode as images before they hit disk
//
// The Manager type is the primary interface for storage operations. A
// photo that is already on disk is never re-downloaded, and a file that
// no longer decodes is removed and treated as absent so the crawl can
// fetch it again.
//
// Usage:
//
//	manager, err := storage.NewManager("photos")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if !manager.Exists(42) {
//	    dims, err := manager.SavePhoto(data, 42)
//	    if err != nil {
//	        log.Printf("Failed to save photo: %v", err)
//	    }
//	    _ = dims
//	}
package storage
