package zipstream

import "encoding/binary"

// packLocalFileHeader returns the 30-byte fixed portion of a local file header;
// the caller appends the name bytes immediately after (extra length is always 0).
// CRC and sizes are always zero here — a data descriptor carries the real values.
func packLocalFileHeader(st *entryState, method CompressionMethod) []byte {
	b := make([]byte, localFileHeaderLength)
	binary.LittleEndian.PutUint32(b[0:4], signatureLocalFileHeader)
	binary.LittleEndian.PutUint16(b[4:6], zip64VersionRequiredToExtract)
	binary.LittleEndian.PutUint16(b[6:8], st.flags)
	binary.LittleEndian.PutUint16(b[8:10], method.wireMethod())
	binary.LittleEndian.PutUint16(b[10:12], fixedModificationTime)
	binary.LittleEndian.PutUint16(b[12:14], fixedModificationDate)
	binary.LittleEndian.PutUint32(b[14:18], 0) // crc
	binary.LittleEndian.PutUint32(b[18:22], 0) // size_compressed
	binary.LittleEndian.PutUint32(b[22:26], 0) // size_uncompressed
	binary.LittleEndian.PutUint16(b[26:28], uint16(len(st.nameBinary)))
	binary.LittleEndian.PutUint16(b[28:30], 0) // extra_field_length
	return b
}

// packDataDescriptor always writes the zip64 (8-byte size) form; the encoder
// never writes the 32-bit data descriptor variant.
func packDataDescriptor(st *entryState) []byte {
	b := make([]byte, dataDescriptorLength)
	binary.LittleEndian.PutUint32(b[0:4], signatureDataDescriptor)
	binary.LittleEndian.PutUint32(b[4:8], st.crc)
	binary.LittleEndian.PutUint64(b[8:16], st.sizeCompressed)
	binary.LittleEndian.PutUint64(b[16:24], st.sizeUncompressed)
	return b
}

// packCentralDirectoryFileHeader returns the 46-byte fixed portion; the caller
// appends the name bytes and then the zip64 extra field. Sizes and offset are
// written as the 0xFFFFFFFF sentinel: their real values live in the extra field.
func packCentralDirectoryFileHeader(st *entryState, method CompressionMethod) []byte {
	b := make([]byte, centralDirectoryHeaderLength)
	binary.LittleEndian.PutUint32(b[0:4], signatureCentralDirectoryFileHeader)
	binary.LittleEndian.PutUint16(b[4:6], zip64VersionMadeBy)
	binary.LittleEndian.PutUint16(b[6:8], zip64VersionRequiredToExtract)
	binary.LittleEndian.PutUint16(b[8:10], st.flags)
	binary.LittleEndian.PutUint16(b[10:12], method.wireMethod())
	binary.LittleEndian.PutUint16(b[12:14], fixedModificationTime)
	binary.LittleEndian.PutUint16(b[14:16], fixedModificationDate)
	binary.LittleEndian.PutUint32(b[16:20], st.crc)
	binary.LittleEndian.PutUint32(b[20:24], 0xffffffff) // size_compressed
	binary.LittleEndian.PutUint32(b[24:28], 0xffffffff) // size_uncompressed
	binary.LittleEndian.PutUint16(b[28:30], uint16(len(st.nameBinary)))
	binary.LittleEndian.PutUint16(b[30:32], zip64ExtraFieldLength)
	binary.LittleEndian.PutUint16(b[32:34], 0) // file_comment_length
	binary.LittleEndian.PutUint16(b[34:36], 0) // disk_start
	binary.LittleEndian.PutUint16(b[36:38], 0) // internal_file_attribute
	binary.LittleEndian.PutUint32(b[38:42], 0) // external_file_attribute
	binary.LittleEndian.PutUint32(b[42:46], 0xffffffff) // offset
	return b
}

// packZip64ExtraField returns the 28-byte zip64 extra field carrying the real
// sizes and offset that the central directory header sentinels stand in for.
func packZip64ExtraField(st *entryState) []byte {
	b := make([]byte, zip64ExtraFieldLength)
	binary.LittleEndian.PutUint16(b[0:2], signatureZip64ExtraField)
	binary.LittleEndian.PutUint16(b[2:4], 24)
	binary.LittleEndian.PutUint64(b[4:12], st.sizeUncompressed)
	binary.LittleEndian.PutUint64(b[12:20], st.sizeCompressed)
	binary.LittleEndian.PutUint64(b[20:28], st.offset)
	return b
}

func packZip64EndOfCentralDirectoryRecord(filesCount uint64, centralDirectoryOffset, centralDirectorySize uint64) []byte {
	b := make([]byte, zip64EndOfCentralDirLength)
	binary.LittleEndian.PutUint32(b[0:4], signatureZip64EndOfCentralDirectory)
	binary.LittleEndian.PutUint64(b[4:12], 44) // size of record, self-relative
	binary.LittleEndian.PutUint16(b[12:14], zip64VersionMadeBy)
	binary.LittleEndian.PutUint16(b[14:16], zip64VersionRequiredToExtract)
	binary.LittleEndian.PutUint32(b[16:20], 0) // number_of_this_disk
	binary.LittleEndian.PutUint32(b[20:24], 0) // central_directory_start (disk)
	binary.LittleEndian.PutUint64(b[24:32], filesCount)
	binary.LittleEndian.PutUint64(b[32:40], filesCount)
	binary.LittleEndian.PutUint64(b[40:48], centralDirectorySize)
	binary.LittleEndian.PutUint64(b[48:56], centralDirectoryOffset)
	return b
}

func packZip64EndOfCentralDirectoryLocator(zip64EndOffset uint64) []byte {
	b := make([]byte, zip64EndOfCentralDirLocLen)
	binary.LittleEndian.PutUint32(b[0:4], signatureZip64EndOfCentralDirLocator)
	binary.LittleEndian.PutUint32(b[4:8], 0) // disk_with_zip64_end
	binary.LittleEndian.PutUint64(b[8:16], zip64EndOffset)
	binary.LittleEndian.PutUint32(b[16:20], 1) // total_disks
	return b
}

func packEndOfCentralDirectoryRecord(filesCount uint64) []byte {
	b := make([]byte, endOfCentralDirectoryLength)
	binary.LittleEndian.PutUint32(b[0:4], signatureEndOfCentralDirectory)
	binary.LittleEndian.PutUint16(b[4:6], 0) // number_of_this_disk
	binary.LittleEndian.PutUint16(b[6:8], 0) // central_directory_start (disk)
	binary.LittleEndian.PutUint16(b[8:10], uint16(min(filesCount, 0xffff)))
	binary.LittleEndian.PutUint16(b[10:12], uint16(min(filesCount, 0xffff)))
	binary.LittleEndian.PutUint32(b[12:16], 0xffffffff) // central_directory_size
	binary.LittleEndian.PutUint32(b[16:20], 0xffffffff) // central_directory_offset
	binary.LittleEndian.PutUint16(b[20:22], 0)          // comment length
	return b
}
