// Package wav implements the §4.10 export pipeline: peak normalization,
// TPDF dither, and a byte-exact 44-byte RIFF/WAVE container for 16/24-bit
// PCM and 32-bit float output, plus a matching decoder for fixture and
// demo-host loading now that the engine no longer shells out to ffmpeg.
package wav

import (
	"encoding/binary"
	"fmt"
	"math"
)

// BitDepth selects the exported sample format (§4.10).
type BitDepth int

const (
	PCM16 BitDepth = 16
	PCM24 BitDepth = 24
	Float32 BitDepth = 32
)

const (
	formatPCM   uint16 = 1
	formatFloat uint16 = 3
	headerSize         = 44
)

// Encode writes channels (one []float64 per channel, all the same length,
// values expected in [-1,1]) as a standard RIFF/WAVE file at depth and
// sampleRate (§4.10 WAV container).
func Encode(channels [][]float64, sampleRate int, depth BitDepth) ([]byte, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("wav: cannot encode zero channels")
	}
	frames := len(channels[0])
	for i, ch := range channels {
		if len(ch) != frames {
			return nil, fmt.Errorf("wav: channel %d has %d frames, want %d", i, len(ch), frames)
		}
	}

	bytesPerSample := int(depth) / 8
	numChannels := len(channels)
	dataSize := frames * numChannels * bytesPerSample
	buf := make([]byte, headerSize+dataSize)

	writeHeader(buf, numChannels, sampleRate, depth, dataSize)

	body := buf[headerSize:]
	for i := 0; i < frames; i++ {
		for c := 0; c < numChannels; c++ {
			off := (i*numChannels + c) * bytesPerSample
			writeSample(body[off:off+bytesPerSample], channels[c][i], depth)
		}
	}
	return buf, nil
}

func writeHeader(buf []byte, numChannels, sampleRate int, depth BitDepth, dataSize int) {
	bytesPerSample := int(depth) / 8
	blockAlign := numChannels * bytesPerSample
	byteRate := sampleRate * blockAlign

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	format := formatPCM
	if depth == Float32 {
		format = formatFloat
	}
	binary.LittleEndian.PutUint16(buf[20:22], format)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(numChannels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(depth))

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
}

func writeSample(dst []byte, x float64, depth BitDepth) {
	if x < -1 {
		x = -1
	} else if x > 1 {
		x = 1
	}
	switch depth {
	case PCM16:
		var v int16
		if x < 0 {
			v = int16(x * 0x8000)
		} else {
			v = int16(x * 0x7FFF)
		}
		binary.LittleEndian.PutUint16(dst, uint16(v))
	case PCM24:
		var v int32
		if x < 0 {
			v = int32(x * 0x800000)
		} else {
			v = int32(x * 0x7FFFFF)
		}
		dst[0] = byte(v)
		dst[1] = byte(v >> 8)
		dst[2] = byte(v >> 16)
	case Float32:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(x)))
	}
}
