package observability

import (
	"bytes"
	"time"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// timestampLayout is ISO-8601 UTC with millisecond precision
const timestampLayout = "2006-01-02T15:04:05.000Z"

var emptyObject = []byte("{}")

// renderedData carries the stringified data argument. The type is private, so
// a caller field that happens to be named "data" is never taken for it.
type renderedData string

func (d renderedData) String() string { return string(d) }

func dataField(text string) zapcore.Field {
	return zapcore.Field{Key: DataKey, Type: zapcore.StringerType, Interface: renderedData(text)}
}

// splitData separates the data argument from the structured fields
func splitData(fields []zapcore.Field) (string, bool, []zapcore.Field) {
	data, found := undefinedText, false
	rest := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if d, ok := f.Interface.(renderedData); ok && f.Type == zapcore.StringerType {
			data, found = string(d), true
			continue
		}
		rest = append(rest, f)
	}
	return data, found, rest
}

// lineEncoder renders `[<timestamp>] [<LEVEL>] <message> <data>` followed by
// any structured fields as a single JSON object.
type lineEncoder struct {
	zapcore.Encoder
	pool buffer.Pool
}

func newLineEncoder() zapcore.Encoder {
	return &lineEncoder{
		Encoder: zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
		}),
		pool: buffer.NewPool(),
	}
}

// jsonEncoder writes one JSON object per record. A caller field named "data"
// replaces the data argument, which is the composite marker in that case.
type jsonEncoder struct {
	zapcore.Encoder
}

func newJSONEncoder() zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     utcTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	return &jsonEncoder{Encoder: zapcore.NewJSONEncoder(cfg)}
}

func (e *jsonEncoder) Clone() zapcore.Encoder {
	return &jsonEncoder{Encoder: e.Encoder.Clone()}
}

func (e *jsonEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	data, found, rest := splitData(fields)
	if !found || hasKey(rest, DataKey) {
		return e.Encoder.EncodeEntry(ent, rest)
	}
	out := make([]zapcore.Field, 0, len(rest)+1)
	out = append(out, zapcore.Field{Key: DataKey, Type: zapcore.StringType, String: data})
	return e.Encoder.EncodeEntry(ent, append(out, rest...))
}

func hasKey(fields []zapcore.Field, key string) bool {
	for _, f := range fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

func utcTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(timestampLayout))
}

func (e *lineEncoder) Clone() zapcore.Encoder {
	return &lineEncoder{Encoder: e.Encoder.Clone(), pool: e.pool}
}

func (e *lineEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	data, _, rest := splitData(fields)

	structured, err := e.Encoder.EncodeEntry(zapcore.Entry{}, rest)
	if err != nil {
		return nil, err
	}
	defer structured.Free()

	line := e.pool.Get()
	line.AppendByte('[')
	line.AppendString(ent.Time.UTC().Format(timestampLayout))
	line.AppendString("] [")
	line.AppendString(ent.Level.CapitalString())
	line.AppendString("] ")
	line.AppendString(ent.Message)
	line.AppendByte(' ')
	line.AppendString(data)
	if obj := bytes.TrimSpace(structured.Bytes()); len(obj) > 0 && !bytes.Equal(obj, emptyObject) {
		line.AppendByte(' ')
		_, _ = line.Write(obj)
	}
	line.AppendString(zapcore.DefaultLineEnding)
	return line, nil
}
