package contracts

import (
	"errors"
	"fmt"
	"listings-service/internal/core/domain"
)

// ErrInvalidPayload - ответ источника не соответствует контракту
var ErrInvalidPayload = errors.New("invalid listings payload")

// ключи конверта в порядке приоритета
var envelopeKeys = []string{"data", "listings", "properties", "results"}

// DecodeRecords разбирает ответ источника: массив записей или объект-конверт с массивом.
// Элементы массива, не являющиеся объектами, пропускаются.
func DecodeRecords(payload []byte) ([]domain.RawRecord, error) {
	doc, err := decodeJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if err := Validate(ListingsPayloadV1, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	var items []interface{}
	switch v := doc.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		for _, key := range envelopeKeys {
			if arr, ok := v[key].([]interface{}); ok {
				items = arr
				break
			}
		}
	}

	records := make([]domain.RawRecord, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			records = append(records, domain.RawRecord(obj))
		}
	}
	return records, nil
}

// DecodeRecord разбирает одну запись, например строку из таблицы источника
func DecodeRecord(payload []byte) (domain.RawRecord, error) {
	doc, err := decodeJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: record is not an object", ErrInvalidPayload)
	}
	return domain.RawRecord(obj), nil
}
