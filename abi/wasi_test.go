package abi

import "testing"

func TestErrnoNames(t *testing.T) {
	tests := []struct {
		errno Errno
		want  string
	}{
		{ESUCCESS, "ESUCCESS"},
		{EBADF, "EBADF"},
		{EFAULT, "EFAULT"},
		{EINVAL, "EINVAL"},
		{EILSEQ, "EILSEQ"},
		{EOVERFLOW, "EOVERFLOW"},
		{ENOTCAPABLE, "ENOTCAPABLE"},
		{Errno(200), "errno(200)"},
	}
	for _, tc := range tests {
		if got := tc.errno.Error(); got != tc.want {
			t.Errorf("Errno(%d).Error() = %q, want %q", tc.errno, got, tc.want)
		}
	}
}

func TestErrnoNumbering(t *testing.T) {
	// spot-check the snapshot numbering the guest depends on
	tests := []struct {
		errno Errno
		want  uint16
	}{
		{ESUCCESS, 0},
		{E2BIG, 1},
		{EBADF, 8},
		{EFAULT, 21},
		{EINVAL, 28},
		{ENOENT, 44},
		{EPERM, 63},
		{EXDEV, 75},
		{ENOTCAPABLE, 76},
	}
	for _, tc := range tests {
		if uint16(tc.errno) != tc.want {
			t.Errorf("%s = %d, want %d", tc.errno.Error(), uint16(tc.errno), tc.want)
		}
	}
	if NumErrno != 77 {
		t.Errorf("NumErrno = %d, want 77", NumErrno)
	}
}

func TestRightsBits(t *testing.T) {
	tests := []struct {
		right Rights
		bit   uint
	}{
		{RightFdDatasync, 0},
		{RightFdRead, 1},
		{RightFdWrite, 6},
		{RightPathOpen, 13},
		{RightPollFdReadwrite, 27},
		{RightSockShutdown, 28},
	}
	for _, tc := range tests {
		if tc.right != 1<<tc.bit {
			t.Errorf("right = %#x, want bit %d", uint64(tc.right), tc.bit)
		}
	}
	if RightsAll != 1<<29-1 {
		t.Errorf("RightsAll = %#x, want %#x", uint64(RightsAll), uint64(1<<29-1))
	}
}

func TestStructConversions(t *testing.T) {
	t.Run("filestat", func(t *testing.T) {
		in := Filestat{
			Dev: 3, Ino: 77, Filetype: FiletypeSymbolicLink,
			Nlink: 1, Size: 123456, Atim: 1, Mtim: 2, Ctim: 3,
		}
		out, err := FilestatFromValue(in.Value())
		if err != nil {
			t.Fatal(err)
		}
		if out != in {
			t.Errorf("got %+v, want %+v", out, in)
		}
	})

	t.Run("fdstat", func(t *testing.T) {
		in := Fdstat{
			FsFiletype:         FiletypeSocketStream,
			FsFlags:            FdflagSync,
			FsRightsBase:       RightFdRead,
			FsRightsInheriting: RightFdRead | RightFdWrite,
		}
		out, err := FdstatFromValue(in.Value())
		if err != nil {
			t.Fatal(err)
		}
		if out != in {
			t.Errorf("got %+v, want %+v", out, in)
		}
	})

	t.Run("dirent", func(t *testing.T) {
		in := Dirent{DNext: 8, DIno: 21, DNamlen: 255, DType: FiletypeRegularFile}
		out, err := DirentFromValue(in.Value())
		if err != nil {
			t.Fatal(err)
		}
		if out != in {
			t.Errorf("got %+v, want %+v", out, in)
		}
	})

	t.Run("prestat", func(t *testing.T) {
		in := Prestat{Tag: 0, PrNameLen: 12}
		out, err := PrestatFromValue(in.Value())
		if err != nil {
			t.Fatal(err)
		}
		if out != in {
			t.Errorf("got %+v, want %+v", out, in)
		}
	})

	t.Run("wrong_type", func(t *testing.T) {
		if _, err := FilestatFromValue(Fdstat{}.Value()); err == nil {
			t.Error("FilestatFromValue should reject a fdstat value")
		}
		if _, err := IovecFromValue(Scalar(U32(), 1)); err == nil {
			t.Error("IovecFromValue should reject a scalar")
		}
	})
}

// Converters accept any descriptor with the same wire layout, not just the
// catalog pointer. Interface compilation builds fresh descriptors for the
// same records, and values decoded through those must still convert.
func TestStructConversionsCompiledDescriptor(t *testing.T) {
	iovec := Record("iovec",
		F("buf", U32()),
		F("buf_len", U32()))
	v := RecordOf(iovec,
		Scalar(iovec.Fields[0].Type, 4096),
		Scalar(iovec.Fields[1].Type, 16))

	got, err := IovecFromValue(v)
	if err != nil {
		t.Fatalf("IovecFromValue: %v", err)
	}
	if got.Buf != 4096 || got.BufLen != 16 {
		t.Errorf("got %+v, want {4096 16}", got)
	}

	stat := Record("filestat",
		F("dev", U64()),
		F("ino", U64()),
		F("filetype", Enum("filetype", 1,
			"unknown", "block_device", "character_device", "directory",
			"regular_file", "socket_dgram", "socket_stream", "symbolic_link")),
		F("nlink", U64()),
		F("size", U64()),
		F("atim", U64()),
		F("mtim", U64()),
		F("ctim", U64()))
	in := Filestat{Dev: 7, Filetype: FiletypeDirectory, Size: 1 << 20}
	fields := make([]Value, len(stat.Fields))
	for i, f := range stat.Fields {
		fields[i] = Scalar(f.Type, in.Value().Field(i).U64())
	}
	out, err := FilestatFromValue(RecordOf(stat, fields...))
	if err != nil {
		t.Fatalf("FilestatFromValue: %v", err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestSameShape(t *testing.T) {
	if !IovecType.SameShape(Record("x", F("a", U32()), F("b", U32()))) {
		t.Error("structurally identical record should match")
	}
	if IovecType.SameShape(Record("x", F("a", U32()), F("b", U16()))) {
		t.Error("different field size should not match")
	}
	if IovecType.SameShape(PrestatType) {
		t.Error("prestat has a u8 tag field, should not match iovec")
	}
	if ErrnoType.SameShape(Enum("e", 2, "a", "b")) {
		t.Error("different case count should not match")
	}
	if RightsType.SameShape(Flags("r", 8, "one", "two")) {
		t.Error("different flag mask should not match")
	}
	if !Array(IovecType).SameShape(Array(Record("x", F("a", U32()), F("b", U32())))) {
		t.Error("arrays of identical elements should match")
	}
	var nilType *Type
	if nilType.SameShape(IovecType) || IovecType.SameShape(nilType) {
		t.Error("nil descriptor matches nothing")
	}
	if !nilType.SameShape(nil) {
		t.Error("nil matches nil")
	}
}
