//go:build windows

package secretstore

import (
	"fmt"
	"syscall"
	"unsafe"
)

// credentialStore drives the Windows Credential Manager (CredWrite /
// CredRead / CredDelete in advapi32.dll) via syscall.NewLazyDLL, the same
// direct-DLL idiom the corpus uses for user32/kernel32 access rather than
// cgo.
type credentialStore struct{}

func newPlatformStore() (Store, error) {
	return credentialStore{}, nil
}

var (
	advapi32       = syscall.NewLazyDLL("advapi32.dll")
	procCredWrite  = advapi32.NewProc("CredWriteW")
	procCredRead   = advapi32.NewProc("CredReadW")
	procCredDelete = advapi32.NewProc("CredDeleteW")
	procCredFree   = advapi32.NewProc("CredFree")
)

const (
	credTypeGeneric         = 1
	credPersistLocalMachine = 2
	errorNotFound           = 1168
)

type credentialW struct {
	Flags              uint32
	Type               uint32
	TargetName         *uint16
	Comment            *uint16
	LastWritten        syscall.Filetime
	CredentialBlobSize uint32
	CredentialBlob     *byte
	Persist            uint32
	AttributeCount     uint32
	Attributes         uintptr
	TargetAlias        *uint16
	UserName           *uint16
}

func targetName(service, account string) string {
	return fmt.Sprintf("awmkit:%s:%s", service, account)
}

func (credentialStore) Set(service, account string, secret []byte) error {
	target, err := syscall.UTF16PtrFromString(targetName(service, account))
	if err != nil {
		return err
	}

	cred := credentialW{
		Type:               credTypeGeneric,
		TargetName:         target,
		CredentialBlobSize: uint32(len(secret)),
		Persist:            credPersistLocalMachine,
	}
	if len(secret) > 0 {
		cred.CredentialBlob = &secret[0]
	}

	ret, _, callErr := procCredWrite.Call(uintptr(unsafe.Pointer(&cred)), 0)
	if ret == 0 {
		return fmt.Errorf("secretstore: CredWriteW: %w", callErr)
	}
	return nil
}

func (credentialStore) Get(service, account string) ([]byte, error) {
	target, err := syscall.UTF16PtrFromString(targetName(service, account))
	if err != nil {
		return nil, err
	}

	var credPtr *credentialW
	ret, _, callErr := procCredRead.Call(uintptr(unsafe.Pointer(target)), credTypeGeneric, 0, uintptr(unsafe.Pointer(&credPtr)))
	if ret == 0 {
		if callErr == syscall.Errno(errorNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("secretstore: CredReadW: %w", callErr)
	}
	defer procCredFree.Call(uintptr(unsafe.Pointer(credPtr)))

	size := int(credPtr.CredentialBlobSize)
	if size == 0 {
		return []byte{}, nil
	}
	secret := make([]byte, size)
	src := unsafe.Slice(credPtr.CredentialBlob, size)
	copy(secret, src)
	return secret, nil
}

func (credentialStore) Delete(service, account string) error {
	target, err := syscall.UTF16PtrFromString(targetName(service, account))
	if err != nil {
		return err
	}
	ret, _, callErr := procCredDelete.Call(uintptr(unsafe.Pointer(target)), credTypeGeneric, 0)
	if ret == 0 {
		if callErr == syscall.Errno(errorNotFound) {
			return nil
		}
		return fmt.Errorf("secretstore: CredDeleteW: %w", callErr)
	}
	return nil
}
