package audio

import (
	"bytes"
	"encoding/binary"
)

const wavHeaderSize = 44

// encodeWAV wraps mono 16-bit PCM samples in a canonical RIFF/WAVE header.
func encodeWAV(samples []int16, sampleRate int) []byte {
	var buf bytes.Buffer
	buf.Grow(wavHeaderSize + len(samples)*2)

	dataSize := len(samples) * 2

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, int32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, int32(16))           // chunk size
	_ = binary.Write(&buf, binary.LittleEndian, int16(1))            // PCM
	_ = binary.Write(&buf, binary.LittleEndian, int16(1))            // mono
	_ = binary.Write(&buf, binary.LittleEndian, int32(sampleRate))   // sample rate
	_ = binary.Write(&buf, binary.LittleEndian, int32(sampleRate*2)) // byte rate
	_ = binary.Write(&buf, binary.LittleEndian, int16(2))            // block align
	_ = binary.Write(&buf, binary.LittleEndian, int16(16))           // bits per sample

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	_ = binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// isSilent reports whether every sample stays within threshold.
func isSilent(samples []int16, threshold int16) bool {
	for _, s := range samples {
		if s > threshold || s < -threshold {
			return false
		}
	}
	return true
}
