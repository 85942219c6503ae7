//go:build linux

package secretstore

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// secretServiceStore talks to the freedesktop Secret Service
// (org.freedesktop.secrets) over the session bus, the same
// dbus.SessionBus()+Object().Call() idiom the corpus uses to talk to
// org.freedesktop.IBus for input-method integration.
type secretServiceStore struct {
	conn *dbus.Conn
}

func newPlatformStore() (Store, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("secretstore: connect session bus: %w", err)
	}
	return &secretServiceStore{conn: conn}, nil
}

const (
	secretServiceName   = "org.freedesktop.secrets"
	secretServicePath   = "/org/freedesktop/secrets"
	collectionInterface = "org.freedesktop.Secret.Collection"
	serviceInterface    = "org.freedesktop.Secret.Service"
	itemInterface       = "org.freedesktop.Secret.Item"
)

func (s *secretServiceStore) defaultCollection() dbus.BusObject {
	return s.conn.Object(secretServiceName, dbus.ObjectPath("/org/freedesktop/secrets/aliases/default"))
}

// openSession opens a plain (unencrypted, session-bus-protected) secret
// session, matching the minimal negotiation most Secret Service clients
// perform against "plain" algorithms.
func (s *secretServiceStore) openSession() (dbus.ObjectPath, error) {
	service := s.conn.Object(secretServiceName, dbus.ObjectPath(secretServicePath))
	var output dbus.Variant
	var sessionPath dbus.ObjectPath
	err := service.Call(serviceInterface+".OpenSession", 0, "plain", dbus.MakeVariant("")).Store(&output, &sessionPath)
	if err != nil {
		return "", fmt.Errorf("secretstore: open session: %w", err)
	}
	return sessionPath, nil
}

func attributesFor(service, account string) map[string]string {
	return map[string]string{
		"service": service,
		"account": account,
		"app":     "awmkit",
	}
}

func (s *secretServiceStore) Set(service, account string, secret []byte) error {
	sessionPath, err := s.openSession()
	if err != nil {
		return err
	}

	props := map[string]dbus.Variant{
		"org.freedesktop.Secret.Item.Label":      dbus.MakeVariant(fmt.Sprintf("awmkit:%s:%s", service, account)),
		"org.freedesktop.Secret.Item.Attributes": dbus.MakeVariant(attributesFor(service, account)),
	}
	secretStruct := struct {
		Session     dbus.ObjectPath
		Parameters  []byte
		Value       []byte
		ContentType string
	}{Session: sessionPath, Parameters: nil, Value: secret, ContentType: "application/octet-stream"}

	var itemPath dbus.ObjectPath
	var promptPath dbus.ObjectPath
	err = s.defaultCollection().Call(collectionInterface+".CreateItem", 0, props, secretStruct, true).Store(&itemPath, &promptPath)
	if err != nil {
		return fmt.Errorf("secretstore: create item: %w", err)
	}
	return nil
}

func (s *secretServiceStore) findItem(service, account string) (dbus.ObjectPath, error) {
	var paths []dbus.ObjectPath
	err := s.defaultCollection().Call(collectionInterface+".SearchItems", 0, attributesFor(service, account)).Store(&paths)
	if err != nil {
		return "", fmt.Errorf("secretstore: search items: %w", err)
	}
	if len(paths) == 0 {
		return "", ErrNotFound
	}
	return paths[0], nil
}

func (s *secretServiceStore) Get(service, account string) ([]byte, error) {
	itemPath, err := s.findItem(service, account)
	if err != nil {
		return nil, err
	}

	sessionPath, err := s.openSession()
	if err != nil {
		return nil, err
	}

	item := s.conn.Object(secretServiceName, itemPath)
	var secretStruct struct {
		Session     dbus.ObjectPath
		Parameters  []byte
		Value       []byte
		ContentType string
	}
	if err := item.Call(itemInterface+".GetSecret", 0, sessionPath).Store(&secretStruct); err != nil {
		return nil, fmt.Errorf("secretstore: get secret: %w", err)
	}
	return secretStruct.Value, nil
}

func (s *secretServiceStore) Delete(service, account string) error {
	itemPath, err := s.findItem(service, account)
	if err == ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	item := s.conn.Object(secretServiceName, itemPath)
	var promptPath dbus.ObjectPath
	if err := item.Call(itemInterface+".Delete", 0).Store(&promptPath); err != nil {
		return fmt.Errorf("secretstore: delete item: %w", err)
	}
	return nil
}
