// Package rpc holds what the daemon and the client share about the wire:
// service and method names, and conversion between operation values and
// google.protobuf.Struct messages.
package rpc

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/nestkey/internal/operations"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "nestkey.v1.Keeper"

// Response is the payload of every reply: the operation result plus a
// session token when the call unlocked the vault.
type Response struct {
	operations.Result
	Token string `json:"token,omitempty"`
}

type decoder func(*structpb.Struct) (operations.Operation, error)

var decoders = map[string]decoder{
	operations.NamePinIsSet:         decodeAs[operations.PinIsSet],
	operations.NamePinCreate:        decodeAs[operations.PinCreate],
	operations.NamePinVerify:        decodeAs[operations.PinVerify],
	operations.NamePinChange:        decodeAs[operations.PinChange],
	operations.NameLock:             decodeAs[operations.Lock],
	operations.NameVaultGet:         decodeAs[operations.VaultGet],
	operations.NameVaultAdd:         decodeAs[operations.VaultAdd],
	operations.NameVaultUpdate:      decodeAs[operations.VaultUpdate],
	operations.NameVaultDelete:      decodeAs[operations.VaultDelete],
	operations.NameVaultWipe:        decodeAs[operations.VaultWipe],
	operations.NameGeneratePassword: decodeAs[operations.GeneratePassword],
	operations.NameThemeGet:         decodeAs[operations.ThemeGet],
	operations.NameThemeSet:         decodeAs[operations.ThemeSet],
}

func decodeAs[T operations.Operation](s *structpb.Struct) (operations.Operation, error) {
	var op T
	if err := FromStruct(s, &op); err != nil {
		return nil, err
	}
	return op, nil
}

// Operations lists every operation name the service exposes, sorted.
func Operations() []string {
	names := make([]string, 0, len(decoders))
	for name := range decoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MethodName turns an operation name into a gRPC method name:
// "pin-is-set" becomes "PinIsSet".
func MethodName(op string) string {
	var b strings.Builder
	for _, part := range strings.Split(op, "-") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// FullMethod is the "/service/Method" path for an operation name.
func FullMethod(op string) string {
	return "/" + ServiceName + "/" + MethodName(op)
}

// Decode rebuilds the operation named op from its request message.
func Decode(op string, s *structpb.Struct) (operations.Operation, error) {
	dec, ok := decoders[op]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", op)
	}
	return dec(s)
}

// ToStruct converts any JSON-marshalable value into a Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return s, nil
}

// FromStruct fills v from s. A nil s leaves v untouched.
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}
