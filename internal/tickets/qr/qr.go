package qr

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const DefaultSize = 256

type Generator struct {
	size  int
	level qrcode.RecoveryLevel
}

func NewGenerator(size int) *Generator {
	if size <= 0 {
		size = DefaultSize
	}
	return &Generator{size: size, level: qrcode.Medium}
}

// PNG renders a redemption code as a QR image. The code is encoded as-is so
// door scanners read back exactly the value the gate looks up.
func (g *Generator) PNG(code string) ([]byte, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("empty redemption code")
	}
	return qrcode.Encode(code, g.level, g.size)
}
