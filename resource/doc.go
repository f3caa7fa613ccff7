// Package resource provides a descriptor table that maps the small
// integer handles a guest passes across the ABI boundary to host-side
// values.
//
// Host implementations keep open files, sockets, clocks and similar
// state in a Table. A syscall implementation looks the descriptor up
// by the handle argument, and returns an error code when the lookup
// fails instead of trusting the guest's number:
//
//	f, ok := files.GetTyped(call.Handle(0), fileType)
//	if !ok {
//		return abi.EBADF
//	}
//
// Handles are dense and reused after removal, matching POSIX-style
// descriptor numbering. Well-known descriptors such as the standard
// streams are pinned with InsertAt before the guest starts.
package resource
