package scconfig

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/momentics/bacnet-sc/api"
)

func parseVMAC(s string) (api.VMAC, error) {
	clean := strings.ReplaceAll(strings.ReplaceAll(s, ":", ""), "-", "")
	raw, err := hex.DecodeString(clean)
	if err != nil {
		return api.VMAC{}, fmt.Errorf("scconfig: invalid vmac hex %q: %w", s, err)
	}
	if len(raw) != api.VMACSize {
		return api.VMAC{}, errInvalidLength("vmac", api.VMACSize, len(raw))
	}
	var out api.VMAC
	copy(out[:], raw)
	return out, nil
}

func parseUUID(s string) (api.UUID, error) {
	if u, err := uuid.Parse(s); err == nil {
		return api.UUIDFromGoogle(u), nil
	}
	clean := strings.ReplaceAll(s, "-", "")
	raw, err := hex.DecodeString(clean)
	if err != nil {
		return api.UUID{}, fmt.Errorf("scconfig: invalid uuid %q: %w", s, err)
	}
	if len(raw) != api.UUIDSize {
		return api.UUID{}, errInvalidLength("uuid", api.UUIDSize, len(raw))
	}
	var out api.UUID
	copy(out[:], raw)
	return out, nil
}
