// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package codec

import (
	"errors"
	"fmt"
	"sync"
)

// Type names a codec, such as "yaml".
type Type string

// ErrUnknownType is returned for a codec type that was never registered.
var ErrUnknownType = errors.New("unknown codec type")

// Encoder encodes a value.
type Encoder interface {
	Encode(v any) ([]byte, error)
}

// Decoder decodes data into the value pointed to by v.
type Decoder interface {
	Decode(data []byte, v any) error
}

// Codec is both an Encoder and a Decoder.
type Codec interface {
	Encoder
	Decoder
}

var registry = struct {
	sync.RWMutex
	encoders map[Type]Encoder
	decoders map[Type]Decoder
}{
	encoders: make(map[Type]Encoder),
	decoders: make(map[Type]Decoder),
}

// Register makes c available under name for both encoding and decoding.
// Registering a name again replaces the previous codec.
func Register(name Type, c Codec) {
	registry.Lock()
	defer registry.Unlock()
	registry.encoders[name] = c
	registry.decoders[name] = c
}

// RegisterDecoder makes d available under name for decoding only.
func RegisterDecoder(name Type, d Decoder) {
	registry.Lock()
	defer registry.Unlock()
	registry.decoders[name] = d
}

// GetEncoder returns the encoder registered under name.
func GetEncoder(name Type) (Encoder, error) {
	registry.RLock()
	defer registry.RUnlock()
	if e, ok := registry.encoders[name]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: encoder %q", ErrUnknownType, name)
}

// GetDecoder returns the decoder registered under name.
func GetDecoder(name Type) (Decoder, error) {
	registry.RLock()
	defer registry.RUnlock()
	if d, ok := registry.decoders[name]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: decoder %q", ErrUnknownType, name)
}
