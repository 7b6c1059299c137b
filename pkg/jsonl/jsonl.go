// Package jsonl кодирует и декодирует newline-delimited JSON.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"

	"github.com/go-faster/errors"
)

// ContentType MIME-тип потока JSONL
const ContentType = "application/x-jsonlines"

// Marshal сериализует каждую запись отдельной строкой.
// Строки разделяются '\n', завершающего перевода строки нет
func Marshal[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i := range records {
		if err := enc.Encode(records[i]); err != nil {
			return nil, errors.Wrapf(err, "encode record %d", i)
		}
	}

	// Encoder добавляет '\n' после каждой записи
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Unmarshal разбирает поток JSONL; пустые строки пропускаются
func Unmarshal[T any](data []byte) ([]T, error) {
	var out []T

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, errors.Wrapf(err, "decode line %d", line)
		}
		out = append(out, rec)
	}

	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan")
	}

	return out, nil
}
