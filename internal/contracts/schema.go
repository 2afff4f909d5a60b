package contracts

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	//go:embed abi/WavePortal.json
	wavePortalArtifact []byte
	//go:embed abi/PetVote.json
	petVoteArtifact []byte
)

// Schema is a parsed contract interface loaded once at startup.
type Schema struct {
	Name string
	ABI  abi.ABI
}

// HasEvent reports whether the schema declares the named event.
func (s *Schema) HasEvent(name string) bool {
	_, ok := s.ABI.Events[name]
	return ok
}

// HasMethod reports whether the schema declares the named method.
func (s *Schema) HasMethod(name string) bool {
	_, ok := s.ABI.Methods[name]
	return ok
}

// WavePortalSchema loads the WavePortal interface, from path when given,
// otherwise from the embedded artifact.
func WavePortalSchema(path string) (*Schema, error) {
	return loadSchema(WavePortalName, path, wavePortalArtifact, []string{methodGetTotalWaves, methodGetAllWaves, methodWave}, eventNewWave)
}

// PetVoteSchema loads the PetVote interface, from path when given,
// otherwise from the embedded artifact.
func PetVoteSchema(path string) (*Schema, error) {
	return loadSchema(PetVoteName, path, petVoteArtifact, []string{methodGetOptions, methodGetVoteHistory, methodAlreadyVoted, methodVote}, eventNewVote)
}

func loadSchema(name, path string, embedded []byte, methods []string, event string) (*Schema, error) {
	raw := embedded
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s schema: %w", name, err)
		}
		raw = b
	}
	s, err := ParseSchema(name, raw)
	if err != nil {
		return nil, err
	}
	for _, m := range methods {
		if !s.HasMethod(m) {
			return nil, fmt.Errorf("%s schema: missing method %q", name, m)
		}
	}
	if !s.HasEvent(event) {
		return nil, fmt.Errorf("%s schema: missing event %q", name, event)
	}
	return s, nil
}

// ParseSchema accepts either a bare ABI array or a build artifact carrying
// the ABI under the "abi" key.
func ParseSchema(name string, raw []byte) (*Schema, error) {
	body := bytes.TrimSpace(raw)
	if len(body) == 0 {
		return nil, fmt.Errorf("%s schema: empty document", name)
	}
	if body[0] == '{' {
		var artifact struct {
			ABI json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(body, &artifact); err != nil {
			return nil, fmt.Errorf("%s schema: decode artifact: %w", name, err)
		}
		if len(artifact.ABI) == 0 {
			return nil, fmt.Errorf("%s schema: artifact has no abi", name)
		}
		body = artifact.ABI
	}
	parsed, err := abi.JSON(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s schema: parse abi: %w", name, err)
	}
	return &Schema{Name: name, ABI: parsed}, nil
}
