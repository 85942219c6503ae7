//go:build linux

package tpmseal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/go-tpm/tpm2"
	"github.com/google/go-tpm/tpm2/transport"
)

var tpmDevicePaths = []string{
	"/dev/tpmrm0",
	"/dev/tpm0",
}

// hardwareSealer seals key-slot secrets as TPM2_KeyedHash objects under a
// freshly-created storage primary key, password-authenticated (no PCR
// policy: key slots must unseal regardless of boot state, unlike the
// checkpoint-binding use the corpus makes of PCR-bound sealing).
type hardwareSealer struct {
	mu         sync.Mutex
	devicePath string
	transport  transport.TPM
}

func detectHardware() Sealer {
	for _, path := range tpmDevicePaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		t, err := transport.OpenTPM(path)
		if err != nil {
			continue
		}
		return &hardwareSealer{devicePath: path, transport: t}
	}
	return nil
}

func (h *hardwareSealer) Available() bool {
	return h.transport != nil
}

func (h *hardwareSealer) createPrimary() (tpm2.TPMHandle, error) {
	createPrimaryCmd := tpm2.CreatePrimary{
		PrimaryHandle: tpm2.TPMRHOwner,
		InPublic:      tpm2.New2B(tpm2.RSASRKTemplate),
	}
	rsp, err := createPrimaryCmd.Execute(h.transport)
	if err != nil {
		return 0, fmt.Errorf("tpmseal: create primary: %w", err)
	}
	return rsp.ObjectHandle, nil
}

func (h *hardwareSealer) flush(handle tpm2.TPMHandle) {
	cmd := tpm2.FlushContext{FlushHandle: handle}
	_, _ = cmd.Execute(h.transport)
}

func (h *hardwareSealer) Seal(secret []byte) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	srk, err := h.createPrimary()
	if err != nil {
		return nil, err
	}
	defer h.flush(srk)

	createCmd := tpm2.Create{
		ParentHandle: tpm2.AuthHandle{
			Handle: srk,
			Auth:   tpm2.PasswordAuth(nil),
		},
		InSensitive: tpm2.TPM2BSensitiveCreate{
			Sensitive: &tpm2.TPMSSensitiveCreate{
				Data: tpm2.NewTPMUSensitiveCreate(&tpm2.TPM2BSensitiveData{Buffer: secret}),
			},
		},
		InPublic: tpm2.New2B(tpm2.TPMTPublic{
			Type:    tpm2.TPMAlgKeyedHash,
			NameAlg: tpm2.TPMAlgSHA256,
			ObjectAttributes: tpm2.TPMAObject{
				FixedTPM:     true,
				FixedParent:  true,
				UserWithAuth: true,
			},
		}),
	}
	createRsp, err := createCmd.Execute(h.transport)
	if err != nil {
		return nil, fmt.Errorf("tpmseal: create sealed object: %w", err)
	}

	pubBytes, err := createRsp.OutPublic.Marshal()
	if err != nil {
		return nil, fmt.Errorf("tpmseal: marshal public: %w", err)
	}
	privBytes, err := createRsp.OutPrivate.Marshal()
	if err != nil {
		return nil, fmt.Errorf("tpmseal: marshal private: %w", err)
	}

	blob := make([]byte, 4+len(pubBytes)+4+len(privBytes))
	binary.BigEndian.PutUint32(blob[0:4], uint32(len(pubBytes)))
	copy(blob[4:], pubBytes)
	offset := 4 + len(pubBytes)
	binary.BigEndian.PutUint32(blob[offset:offset+4], uint32(len(privBytes)))
	copy(blob[offset+4:], privBytes)
	return blob, nil
}

func (h *hardwareSealer) Unseal(blob []byte) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(blob) < 8 {
		return nil, errors.New("tpmseal: sealed blob too short")
	}
	pubLen := binary.BigEndian.Uint32(blob[0:4])
	if len(blob) < int(4+pubLen+4) {
		return nil, errors.New("tpmseal: sealed blob corrupted")
	}
	pubBytes := blob[4 : 4+pubLen]
	offset := 4 + pubLen
	privLen := binary.BigEndian.Uint32(blob[offset : offset+4])
	if len(blob) < int(offset+4+privLen) {
		return nil, errors.New("tpmseal: sealed blob corrupted")
	}
	privBytes := blob[offset+4 : offset+4+privLen]

	var outPublic tpm2.TPM2BPublic
	if _, err := outPublic.Unmarshal(pubBytes); err != nil {
		return nil, fmt.Errorf("tpmseal: unmarshal public: %w", err)
	}

	srk, err := h.createPrimary()
	if err != nil {
		return nil, err
	}
	defer h.flush(srk)

	loadCmd := tpm2.Load{
		ParentHandle: tpm2.AuthHandle{
			Handle: srk,
			Auth:   tpm2.PasswordAuth(nil),
		},
		InPublic:  outPublic,
		InPrivate: tpm2.TPM2BPrivate{Buffer: privBytes},
	}
	loadRsp, err := loadCmd.Execute(h.transport)
	if err != nil {
		return nil, fmt.Errorf("tpmseal: load sealed object: %w", err)
	}
	defer h.flush(loadRsp.ObjectHandle)

	unsealCmd := tpm2.Unseal{
		ItemHandle: tpm2.AuthHandle{
			Handle: loadRsp.ObjectHandle,
			Auth:   tpm2.PasswordAuth(nil),
		},
	}
	unsealRsp, err := unsealCmd.Execute(h.transport)
	if err != nil {
		return nil, fmt.Errorf("tpmseal: unseal: %w", err)
	}
	return unsealRsp.OutData.Buffer, nil
}

func (h *hardwareSealer) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.transport == nil {
		return nil
	}
	err := h.transport.Close()
	h.transport = nil
	return err
}
