package stl

import (
	"bufio"
	"encoding/binary"
	"io"
	gomath "math"

	"github.com/Faultbox/stlview/pkg/math"
)

// EncodeBinary writes faces as a binary STL. name is truncated to fit the
// 80-byte header.
func EncodeBinary(w io.Writer, name string, faces []Face) error {
	bw := bufio.NewWriter(w)

	var header [headerSize]byte
	copy(header[:], name)
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(faces))); err != nil {
		return err
	}

	var rec [recordSize]byte
	for _, f := range faces {
		putVec3(rec[0:], f.Normal)
		putVec3(rec[12:], f.Vertices[0])
		putVec3(rec[24:], f.Vertices[1])
		putVec3(rec[36:], f.Vertices[2])
		binary.LittleEndian.PutUint16(rec[48:], f.Attr)
		if _, err := bw.Write(rec[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func putVec3(b []byte, v math.Vec3) {
	binary.LittleEndian.PutUint32(b[0:], gomath.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:], gomath.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[8:], gomath.Float32bits(v.Z))
}
