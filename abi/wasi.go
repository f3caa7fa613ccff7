package abi

import (
	"github.com/wippyai/wasi-abi/errors"
)

// WASI snapshot type catalog. Field orders, discriminant widths and flag
// bit positions follow the published WASI ABI byte-for-byte; guest binaries
// compiled against other hosts depend on these exact layouts.

// Rights is the capability bit vector restricting which operations a file
// descriptor may be used for.
type Rights uint64

const (
	RightFdDatasync Rights = 1 << iota
	RightFdRead
	RightFdSeek
	RightFdFdstatSetFlags
	RightFdSync
	RightFdTell
	RightFdWrite
	RightFdAdvise
	RightFdAllocate
	RightPathCreateDirectory
	RightPathCreateFile
	RightPathLinkSource
	RightPathLinkTarget
	RightPathOpen
	RightFdReaddir
	RightPathReadlink
	RightPathRenameSource
	RightPathRenameTarget
	RightPathFilestatGet
	RightPathFilestatSetSize
	RightPathFilestatSetTimes
	RightFdFilestatGet
	RightFdFilestatSetSize
	RightFdFilestatSetTimes
	RightPathSymlink
	RightPathRemoveDirectory
	RightPathUnlinkFile
	RightPollFdReadwrite
	RightSockShutdown
)

// RightsAll is every defined right; bits above it are reserved and must be
// zero on the wire.
const RightsAll Rights = RightSockShutdown<<1 - 1

var rightNames = []string{
	"fd_datasync",
	"fd_read",
	"fd_seek",
	"fd_fdstat_set_flags",
	"fd_sync",
	"fd_tell",
	"fd_write",
	"fd_advise",
	"fd_allocate",
	"path_create_directory",
	"path_create_file",
	"path_link_source",
	"path_link_target",
	"path_open",
	"fd_readdir",
	"path_readlink",
	"path_rename_source",
	"path_rename_target",
	"path_filestat_get",
	"path_filestat_set_size",
	"path_filestat_set_times",
	"fd_filestat_get",
	"fd_filestat_set_size",
	"fd_filestat_set_times",
	"path_symlink",
	"path_remove_directory",
	"path_unlink_file",
	"poll_fd_readwrite",
	"sock_shutdown",
}

// Filetype is the type of a file descriptor or file.
type Filetype uint8

const (
	FiletypeUnknown Filetype = iota
	FiletypeBlockDevice
	FiletypeCharacterDevice
	FiletypeDirectory
	FiletypeRegularFile
	FiletypeSocketDgram
	FiletypeSocketStream
	FiletypeSymbolicLink
)

// Fdflags are file descriptor flags.
type Fdflags uint16

const (
	FdflagAppend Fdflags = 1 << iota
	FdflagDsync
	FdflagNonblock
	FdflagRsync
	FdflagSync
)

func named(name string, t *Type) *Type {
	t.Name = name
	return t
}

// Catalog descriptors. Built once at package init, immutable thereafter.
var (
	FdType        = Handle("fd")
	FilesizeType  = named("filesize", U64())
	DeviceType    = named("device", U64())
	InodeType     = named("inode", U64())
	LinkcountType = named("linkcount", U64())
	TimestampType = Timestamp()

	ErrnoType = Enum("errno", 2, errnoToString[:]...)

	RightsType = Flags("rights", 8, rightNames...)

	FiletypeType = Enum("filetype", 1,
		"unknown", "block_device", "character_device", "directory",
		"regular_file", "socket_dgram", "socket_stream", "symbolic_link")

	FdflagsType = Flags("fdflags", 2,
		"append", "dsync", "nonblock", "rsync", "sync")

	FstflagsType = Flags("fstflags", 2,
		"atim", "atim_now", "mtim", "mtim_now")

	OflagsType = Flags("oflags", 2,
		"creat", "directory", "excl", "trunc")

	LookupflagsType = Flags("lookupflags", 4, "symlink_follow")

	ClockidType = Enum("clockid", 4,
		"realtime", "monotonic", "process_cputime_id", "thread_cputime_id")

	WhenceType = Enum("whence", 1, "set", "cur", "end")

	AdviceType = Enum("advice", 1,
		"normal", "sequential", "random", "willneed", "dontneed", "noreuse")

	// iovec: {buf: ptr, buf_len: size}  8 bytes, align 4
	IovecType = Record("iovec",
		F("buf", named("ptr", U32())),
		F("buf_len", named("size", U32())))

	// filestat: 64 bytes, align 8 (filetype at 16, nlink padded up to 24)
	FilestatType = Record("filestat",
		F("dev", DeviceType),
		F("ino", InodeType),
		F("filetype", FiletypeType),
		F("nlink", LinkcountType),
		F("size", FilesizeType),
		F("atim", TimestampType),
		F("mtim", TimestampType),
		F("ctim", TimestampType))

	// fdstat: 24 bytes, align 8 (fs_flags at 2, rights at 8 and 16)
	FdstatType = Record("fdstat",
		F("fs_filetype", FiletypeType),
		F("fs_flags", FdflagsType),
		F("fs_rights_base", RightsType),
		F("fs_rights_inheriting", RightsType))

	// dirent: 24 bytes, align 8 (d_namlen at 16, d_type at 20)
	DirentType = Record("dirent",
		F("d_next", named("dircookie", U64())),
		F("d_ino", InodeType),
		F("d_namlen", named("dirnamlen", U32())),
		F("d_type", FiletypeType))

	// prestat: 8 bytes, align 4 (tag at 0, pr_name_len at 4)
	PrestatType = Record("prestat",
		F("tag", named("preopentype", U8())),
		F("pr_name_len", named("size", U32())))
)

// Filestat is the host-native file attribute record.
type Filestat struct {
	Dev      uint64
	Ino      uint64
	Filetype Filetype
	Nlink    uint64
	Size     uint64
	Atim     uint64
	Mtim     uint64
	Ctim     uint64
}

func (s Filestat) Value() Value {
	return RecordOf(FilestatType,
		Scalar(DeviceType, s.Dev),
		Scalar(InodeType, s.Ino),
		Scalar(FiletypeType, uint64(s.Filetype)),
		Scalar(LinkcountType, s.Nlink),
		Scalar(FilesizeType, s.Size),
		Scalar(TimestampType, s.Atim),
		Scalar(TimestampType, s.Mtim),
		Scalar(TimestampType, s.Ctim))
}

func FilestatFromValue(v Value) (Filestat, error) {
	if !FilestatType.SameShape(v.Type()) {
		return Filestat{}, errors.TypeMismatch(errors.PhaseDecode, nil, typeName(v), "filestat")
	}
	return Filestat{
		Dev:      v.Field(0).U64(),
		Ino:      v.Field(1).U64(),
		Filetype: Filetype(v.Field(2).U8()),
		Nlink:    v.Field(3).U64(),
		Size:     v.Field(4).U64(),
		Atim:     v.Field(5).U64(),
		Mtim:     v.Field(6).U64(),
		Ctim:     v.Field(7).U64(),
	}, nil
}

// Fdstat is the host-native file descriptor attribute record.
type Fdstat struct {
	FsFiletype         Filetype
	FsFlags            Fdflags
	FsRightsBase       Rights
	FsRightsInheriting Rights
}

func (s Fdstat) Value() Value {
	return RecordOf(FdstatType,
		Scalar(FiletypeType, uint64(s.FsFiletype)),
		Scalar(FdflagsType, uint64(s.FsFlags)),
		Scalar(RightsType, uint64(s.FsRightsBase)),
		Scalar(RightsType, uint64(s.FsRightsInheriting)))
}

func FdstatFromValue(v Value) (Fdstat, error) {
	if !FdstatType.SameShape(v.Type()) {
		return Fdstat{}, errors.TypeMismatch(errors.PhaseDecode, nil, typeName(v), "fdstat")
	}
	return Fdstat{
		FsFiletype:         Filetype(v.Field(0).U8()),
		FsFlags:            Fdflags(v.Field(1).U16()),
		FsRightsBase:       Rights(v.Field(2).U64()),
		FsRightsInheriting: Rights(v.Field(3).U64()),
	}, nil
}

// Iovec is one guest scatter/gather slice: a pointer into linear memory and
// a byte length. This layer carries the pair; it never follows the pointer.
type Iovec struct {
	Buf    uint32
	BufLen uint32
}

func (s Iovec) Value() Value {
	return RecordOf(IovecType,
		Scalar(IovecType.Fields[0].Type, uint64(s.Buf)),
		Scalar(IovecType.Fields[1].Type, uint64(s.BufLen)))
}

func IovecFromValue(v Value) (Iovec, error) {
	if !IovecType.SameShape(v.Type()) {
		return Iovec{}, errors.TypeMismatch(errors.PhaseDecode, nil, typeName(v), "iovec")
	}
	return Iovec{
		Buf:    v.Field(0).U32(),
		BufLen: v.Field(1).U32(),
	}, nil
}

// Dirent is the fixed-size head of a directory entry; the entry name
// follows it in guest memory.
type Dirent struct {
	DNext   uint64
	DIno    uint64
	DNamlen uint32
	DType   Filetype
}

func (s Dirent) Value() Value {
	return RecordOf(DirentType,
		Scalar(DirentType.Fields[0].Type, s.DNext),
		Scalar(InodeType, s.DIno),
		Scalar(DirentType.Fields[2].Type, uint64(s.DNamlen)),
		Scalar(FiletypeType, uint64(s.DType)))
}

func DirentFromValue(v Value) (Dirent, error) {
	if !DirentType.SameShape(v.Type()) {
		return Dirent{}, errors.TypeMismatch(errors.PhaseDecode, nil, typeName(v), "dirent")
	}
	return Dirent{
		DNext:   v.Field(0).U64(),
		DIno:    v.Field(1).U64(),
		DNamlen: v.Field(2).U32(),
		DType:   Filetype(v.Field(3).U8()),
	}, nil
}

// Prestat describes a preopened directory: tag 0 (dir) and the length of
// the preopen path.
type Prestat struct {
	Tag       uint8
	PrNameLen uint32
}

func (s Prestat) Value() Value {
	return RecordOf(PrestatType,
		Scalar(PrestatType.Fields[0].Type, uint64(s.Tag)),
		Scalar(PrestatType.Fields[1].Type, uint64(s.PrNameLen)))
}

func PrestatFromValue(v Value) (Prestat, error) {
	if !PrestatType.SameShape(v.Type()) {
		return Prestat{}, errors.TypeMismatch(errors.PhaseDecode, nil, typeName(v), "prestat")
	}
	return Prestat{
		Tag:       v.Field(0).U8(),
		PrNameLen: v.Field(1).U32(),
	}, nil
}

func typeName(v Value) string {
	if v.Type() == nil {
		return "untyped"
	}
	return v.Type().Name
}
