// Package fs provides the filesystem abstraction behind spill files.
//
// The package defines two key interfaces:
//
//   - [File]: An open spill file
//   - [FileSystem]: The operations the disk manager performs
//
// # Implementations
//
//   - [LocalFS]: Production implementation using the os package
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// Tests can inject [FaultyFS] to simulate a full disk:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".arrow", fs.Fault{FailAfterBytes: 1024})
package fs
