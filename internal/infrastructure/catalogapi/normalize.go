package catalogapi

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"hospital-scheduling/internal/domain/entity"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// The catalog backend has shipped several response shapes over time. Everything
// below maps them onto the canonical entity types so nothing past this package
// sees the variation.

var errUnrecognizedShape = errors.New("unrecognized catalog response shape")

// listEnvelopeKeys are tried in order when a list is wrapped in an object.
var listEnvelopeKeys = []string{"data", "items", "results"}

// fields is a loosely-typed JSON object
type fields map[string]json.RawMessage

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// decodeList unwraps a bare array, {"data": [...]}, {"data": {"items": [...]}},
// {"items": [...]} or {"results": [...]}.
func decodeList(body []byte) ([]json.RawMessage, error) {
	switch firstByte(body) {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, err
		}
		return list, nil
	case '{':
		var obj fields
		if err := json.Unmarshal(body, &obj); err != nil {
			return nil, err
		}
		for _, key := range listEnvelopeKeys {
			if inner, ok := obj[key]; ok && !isNull(inner) {
				return decodeList(inner)
			}
		}
		return nil, errUnrecognizedShape
	}
	return nil, errUnrecognizedShape
}

// decodeObject unwraps {"data": {...}} down to the first object that is not an envelope.
func decodeObject(body []byte) (fields, error) {
	if firstByte(body) != '{' {
		return nil, errUnrecognizedShape
	}
	var obj fields
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}
	if _, hasID := obj["id"]; !hasID {
		if inner, ok := obj["data"]; ok && firstByte(inner) == '{' {
			return decodeObject(inner)
		}
	}
	return obj, nil
}

func (f fields) raw(keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		if v, ok := f[key]; ok && !isNull(v) {
			return v, true
		}
	}
	return nil, false
}

func (f fields) str(keys ...string) string {
	raw, ok := f.raw(keys...)
	if !ok {
		return ""
	}
	if firstByte(raw) == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return strings.TrimSpace(s)
		}
		return ""
	}
	// numbers used as identifiers
	return strings.TrimSpace(string(raw))
}

func (f fields) integer(keys ...string) (int64, bool) {
	s := f.str(keys...)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil && fl == float64(int64(fl)) {
		return int64(fl), true
	}
	return 0, false
}

func (f fields) boolean(def bool, keys ...string) bool {
	raw, ok := f.raw(keys...)
	if !ok {
		return def
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	if parsed, err := strconv.ParseBool(f.str(keys...)); err == nil {
		return parsed
	}
	return def
}

func (f fields) amount(keys ...string) decimal.Decimal {
	s := f.str(keys...)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (f fields) object(keys ...string) (fields, bool) {
	raw, ok := f.raw(keys...)
	if !ok || firstByte(raw) != '{' {
		return nil, false
	}
	var obj fields
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func toFields(raw json.RawMessage) (fields, error) {
	var obj fields
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func normalizeSpecialty(raw json.RawMessage) (entity.Specialty, error) {
	f, err := toFields(raw)
	if err != nil {
		return entity.Specialty{}, err
	}

	id, ok := f.integer("id", "specialty_id", "specialtyId")
	if !ok || id <= 0 {
		return entity.Specialty{}, fmt.Errorf("specialty without a valid id: %s", raw)
	}

	return entity.Specialty{
		ID:          id,
		Name:        f.str("name", "specialty_name", "specialtyName", "title"),
		Description: f.str("description", "desc"),
	}, nil
}

func normalizeDoctor(raw json.RawMessage) (entity.Doctor, error) {
	f, err := toFields(raw)
	if err != nil {
		return entity.Doctor{}, err
	}

	id, ok := f.integer("id", "doctor_id", "doctorId")
	if !ok || id <= 0 {
		return entity.Doctor{}, fmt.Errorf("doctor without a valid id: %s", raw)
	}

	doctor := entity.Doctor{
		ID:              id,
		FullName:        f.str("full_name", "fullName", "name"),
		LicenseNumber:   f.str("license_number", "licenseNumber", "str_number"),
		ConsultationFee: f.amount("consultation_fee", "consultationFee", "fee"),
		IsActive:        f.boolean(true, "is_active", "isActive", "active"),
	}

	if specialtyID, ok := f.integer("specialty_id", "specialtyId"); ok {
		doctor.SpecialtyID = specialtyID
	}
	if nested, ok := f.object("specialty"); ok {
		specialty, err := normalizeSpecialty(mustMarshal(nested))
		if err == nil {
			doctor.SpecialtyID = specialty.ID
			doctor.Specialty = &specialty
		}
	}

	if doctor.FullName == "" {
		first, last := f.str("first_name", "firstName"), f.str("last_name", "lastName")
		doctor.FullName = strings.TrimSpace(first + " " + last)
	}

	return doctor, nil
}

func normalizeTimeBlock(f fields) (entity.TimeBlock, error) {
	block := entity.TimeBlock{
		ID:        f.str("id", "time_block_id", "timeBlockId", "code"),
		Label:     f.str("label", "name", "display_name", "displayName"),
		StartTime: f.str("start_time", "startTime", "start"),
		EndTime:   f.str("end_time", "endTime", "end"),
	}
	if block.ID == "" {
		return entity.TimeBlock{}, errors.New("time block without an id")
	}

	slots, ok := f.integer("total_slots", "totalSlots", "capacity", "quota")
	if !ok || slots <= 0 {
		return entity.TimeBlock{}, fmt.Errorf("time block %s without a positive capacity", block.ID)
	}
	block.TotalSlots = int(slots)

	if order, ok := f.integer("sort_order", "sortOrder", "order"); ok {
		block.SortOrder = int(order)
	}
	if block.Label == "" {
		block.Label = block.ID
	}
	return block, nil
}

// normalizeTemplate accepts either a weekday-keyed object
//
//	{"1": [{...block}], "monday": {"blocks": [...]}}
//
// or a flat list of rows
//
//	[{"weekday": 1, "time_block": {...}}, {"day_of_week": "Mon", "id": "AM", "capacity": 2}]
//
// optionally wrapped in data/template/schedule/availability envelopes.
func normalizeTemplate(body []byte) (entity.AvailabilityTemplate, error) {
	switch firstByte(body) {
	case '[':
		var rows []json.RawMessage
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, err
		}
		return templateFromRows(rows)
	case '{':
		var obj fields
		if err := json.Unmarshal(body, &obj); err != nil {
			return nil, err
		}
		for _, key := range []string{"data", "template", "schedule", "availability", "items", "results"} {
			inner, ok := obj[key]
			if !ok {
				continue
			}
			if isNull(inner) {
				return entity.AvailabilityTemplate{}, nil
			}
			return normalizeTemplate(inner)
		}
		return templateFromWeekdayKeys(obj)
	}
	return nil, errUnrecognizedShape
}

// weekdayKey is one top-level key of a weekday-keyed template
type weekdayKey struct {
	day entity.Weekday
	key string
}

func templateFromWeekdayKeys(obj fields) (entity.AvailabilityTemplate, error) {
	// "0", "7", "sun" and "sunday" all name Sunday; walk keys in a fixed order
	// so aliases merge the same way on every call.
	keys := make([]weekdayKey, 0, len(obj))
	for key := range obj {
		day, ok := entity.ParseWeekday(key)
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday key %q", errUnrecognizedShape, key)
		}
		keys = append(keys, weekdayKey{day: day, key: key})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].day != keys[j].day {
			return keys[i].day < keys[j].day
		}
		return keys[i].key < keys[j].key
	})

	template := make(entity.AvailabilityTemplate)
	for _, k := range keys {
		day := k.day
		raw := obj[k.key]
		if firstByte(raw) == '{' {
			inner, err := toFields(raw)
			if err != nil {
				return nil, err
			}
			blocks, ok := inner.raw("blocks", "time_blocks", "timeBlocks")
			if !ok {
				continue
			}
			raw = blocks
		}
		if isNull(raw) {
			continue
		}

		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		for _, item := range list {
			f, err := toFields(item)
			if err != nil {
				return nil, err
			}
			block, err := normalizeTimeBlock(f)
			if err != nil {
				return nil, err
			}
			addBlock(template, day, block)
		}
	}
	sortTemplate(template)
	return template, nil
}

func templateFromRows(rows []json.RawMessage) (entity.AvailabilityTemplate, error) {
	template := make(entity.AvailabilityTemplate)
	for _, row := range rows {
		f, err := toFields(row)
		if err != nil {
			return nil, err
		}

		day, ok := entity.ParseWeekday(f.str("weekday", "day_of_week", "dayOfWeek", "day"))
		if !ok {
			return nil, fmt.Errorf("%w: row without a valid weekday: %s", errUnrecognizedShape, row)
		}

		blockFields := f
		if nested, ok := f.object("time_block", "timeBlock", "block"); ok {
			blockFields = nested
		} else if id := f.str("time_block_id", "timeBlockId"); id != "" {
			// flattened row: the row id is the availability row, not the block
			blockFields = fields{}
			for k, v := range f {
				blockFields[k] = v
			}
			delete(blockFields, "id")
		}

		block, err := normalizeTimeBlock(blockFields)
		if err != nil {
			return nil, err
		}
		addBlock(template, day, block)
	}
	sortTemplate(template)
	return template, nil
}

// addBlock appends block to day unless a block with the same id is already there.
func addBlock(template entity.AvailabilityTemplate, day entity.Weekday, block entity.TimeBlock) {
	for _, existing := range template[day] {
		if existing.ID == block.ID {
			return
		}
	}
	template[day] = append(template[day], block)
}

func sortTemplate(template entity.AvailabilityTemplate) {
	for day := range template {
		blocks := template[day]
		sort.SliceStable(blocks, func(i, j int) bool {
			return blocks[i].SortOrder < blocks[j].SortOrder
		})
	}
}

func mustMarshal(f fields) json.RawMessage {
	raw, err := json.Marshal(f)
	if err != nil {
		return json.RawMessage("{}")
	}
	return raw
}
