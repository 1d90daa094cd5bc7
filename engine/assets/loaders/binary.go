package loaders

import (
	"encoding/binary"
	"fmt"
	"os"
)

const spirvMagic = 0x07230203

// LoadShaderWords reads a compiled SPIR-V binary and repacks it into the
// 32-bit words the Vulkan API expects.
func LoadShaderWords(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader %s: %w", path, err)
	}
	return repackShaderWords(path, data)
}

func repackShaderWords(name string, data []byte) ([]uint32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("shader %s has invalid size %d", name, len(data))
	}

	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}

	if words[0] != spirvMagic {
		return nil, fmt.Errorf("shader %s is not a SPIR-V binary", name)
	}
	return words, nil
}
