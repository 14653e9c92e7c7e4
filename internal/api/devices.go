package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/displayhub/internal/audit"
	"github.com/nerrad567/displayhub/internal/device"
)

// deviceSecretHeader carries the firmware secret on POST /devices/register.
const deviceSecretHeader = "X-Device-Secret"

// pairRequest is the body of POST /devices/pair.
type pairRequest struct {
	PairingCode string `json:"pairing_code"`
}

// updateDeviceRequest is the body of PUT /devices/{id}.
// current_layout_id is kept raw so an explicit null can be told apart
// from an omitted field.
type updateDeviceRequest struct {
	Name            *string         `json:"name"`
	CurrentLayoutID json.RawMessage `json:"current_layout_id"`
}

// registeredDeviceResponse is returned to a display after registration.
type registeredDeviceResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PairingCode string `json:"pairing_code"`
}

// pairingResponse is returned by pair and disconnect.
type pairingResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Paired bool   `json:"paired"`
}

// deviceResponse is a single display as seen by its owner.
type deviceResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	CurrentLayoutID *string `json:"current_layout_id"`
	Paired          bool    `json:"paired"`
}

// deviceListItem is one entry of GET /devices.
type deviceListItem struct {
	device.Device
	Paired bool `json:"paired"`
}

func newDeviceResponse(d *device.Device) deviceResponse {
	return deviceResponse{
		ID:              d.ID,
		Name:            d.Name,
		CurrentLayoutID: d.CurrentLayoutID,
		Paired:          d.Paired(),
	}
}

// handleRegisterDevice registers a new unpaired display.
func (s *Server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.devices.RegisterDevice(r.Context(), r.Header.Get(deviceSecretHeader))
	if err != nil {
		s.writeServiceError(w, r, "register device", err)
		return
	}

	s.record(audit.Entry{
		Action:     audit.ActionDeviceRegister,
		EntityType: audit.EntityDevice,
		EntityID:   d.ID,
	})

	writeJSON(w, http.StatusCreated, registeredDeviceResponse{
		ID:          d.ID,
		Name:        d.Name,
		PairingCode: d.PairingCode,
	})
}

// handlePairDevice binds the display showing the pairing code to the caller.
func (s *Server) handlePairDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req pairRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := s.devices.Pair(r.Context(), id.UserID, req.PairingCode)
	if err != nil {
		s.writeServiceError(w, r, "pair device", err)
		return
	}

	transferred := res.PreviousOwnerID != "" && res.PreviousOwnerID != id.UserID
	s.metrics.RecordPairing(true, transferred)

	entry := audit.Entry{
		Action:     audit.ActionDevicePair,
		EntityType: audit.EntityDevice,
		EntityID:   res.Device.ID,
		UserID:     id.UserID,
	}
	if transferred {
		entry.Action = audit.ActionDeviceTransfer
		entry.Details = map[string]any{"previous_user_id": res.PreviousOwnerID}
	}
	s.record(entry)

	writeJSON(w, http.StatusOK, pairingResponse{
		ID:     res.Device.ID,
		Name:   res.Device.Name,
		Paired: true,
	})
}

// handleDisconnectDevice unpairs one of the caller's displays.
func (s *Server) handleDisconnectDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	d, err := s.devices.Disconnect(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, "disconnect device", err)
		return
	}

	s.metrics.RecordPairing(false, false)
	s.record(audit.Entry{
		Action:     audit.ActionDeviceDisconnect,
		EntityType: audit.EntityDevice,
		EntityID:   d.ID,
		UserID:     id.UserID,
	})

	writeJSON(w, http.StatusOK, pairingResponse{
		ID:     d.ID,
		Name:   d.Name,
		Paired: false,
	})
}

// handleGetDevice returns one of the caller's displays.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	d, err := s.devices.Get(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, "get device", err)
		return
	}

	writeJSON(w, http.StatusOK, newDeviceResponse(d))
}

// handleListDevices returns every display the caller owns.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	id, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	devices, err := s.devices.List(r.Context(), id.UserID)
	if err != nil {
		s.writeServiceError(w, r, "list devices", err)
		return
	}

	items := make([]deviceListItem, 0, len(devices))
	for _, d := range devices {
		items = append(items, deviceListItem{Device: d, Paired: d.Paired()})
	}
	writeJSON(w, http.StatusOK, items)
}

// handleUpdateDevice renames a display or changes its current layout.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req updateDeviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := device.Patch{Name: req.Name}
	if req.CurrentLayoutID != nil {
		layoutID, valid := parseLayoutID(req.CurrentLayoutID)
		if !valid {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "current_layout_id must be a string, a number or null")
			return
		}
		patch.SetLayout = true
		patch.CurrentLayoutID = layoutID
	}

	d, err := s.devices.Update(r.Context(), id.UserID, chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeServiceError(w, r, "update device", err)
		return
	}

	details := map[string]any{}
	if patch.Name != nil {
		details["name"] = d.Name
	}
	if patch.SetLayout {
		details["current_layout_id"] = d.CurrentLayoutID
	}
	s.record(audit.Entry{
		Action:     audit.ActionDeviceUpdate,
		EntityType: audit.EntityDevice,
		EntityID:   d.ID,
		UserID:     id.UserID,
		Details:    details,
	})

	writeJSON(w, http.StatusOK, newDeviceResponse(d))
}

// parseLayoutID interprets a present current_layout_id value.
// null clears the layout; strings and numbers are stored as text.
func parseLayoutID(raw json.RawMessage) (*string, bool) {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return nil, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s, true
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		v := n.String()
		return &v, true
	}

	return nil, false
}
