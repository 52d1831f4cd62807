// Package record decodes benchmark result files and flattens them into
// table rows.
package record

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/bwilder0/folktexts/internal/fetcher"
	"github.com/bwilder0/folktexts/internal/model"
)

// Reserved top-level keys of a result file.
const (
	keyConfig          = "config"
	keyPlots           = "plots"
	keyPredictionsPath = "predictions_path"
)

// Decode reads one result JSON document into a ResultRecord.
func Decode(r io.Reader) (*model.ResultRecord, error) {
	raw, err := fetcher.DecodeJSONObject[map[string]json.RawMessage](r)
	if err != nil {
		return nil, eris.Wrap(err, "record: decode")
	}
	return fromRaw(*raw)
}

// DecodeFile reads the result JSON document at path.
func DecodeFile(path string) (*model.ResultRecord, error) {
	raw, err := fetcher.DecodeJSONFile[map[string]json.RawMessage](path)
	if err != nil {
		return nil, eris.Wrap(err, "record: decode file")
	}
	rec, err := fromRaw(*raw)
	if err != nil {
		return nil, eris.Wrapf(err, "record: %s", path)
	}
	return rec, nil
}

func fromRaw(raw map[string]json.RawMessage) (*model.ResultRecord, error) {
	rec := &model.ResultRecord{
		Metrics:     make(map[string]any, len(raw)),
		ConfigExtra: make(map[string]any),
	}

	for key, msg := range raw {
		switch key {
		case keyConfig:
			if err := decodeConfig(msg, rec); err != nil {
				return nil, err
			}
		case keyPlots:
			rec.HasPlots = true
		case keyPredictionsPath:
			var p *string
			if err := json.Unmarshal(msg, &p); err != nil {
				return nil, eris.Wrap(err, "record: decode predictions_path")
			}
			if p != nil {
				rec.PredictionsPath = *p
			}
		default:
			var v any
			if err := json.Unmarshal(msg, &v); err != nil {
				return nil, eris.Wrapf(err, "record: decode metric %q", key)
			}
			rec.Metrics[key] = v
		}
	}

	if rec.Config.ModelName == "" {
		return nil, eris.New("record: config.model_name is required")
	}
	if rec.Config.TaskName == "" {
		return nil, eris.New("record: config.task_name is required")
	}
	return rec, nil
}

func decodeConfig(msg json.RawMessage, rec *model.ResultRecord) error {
	if err := json.Unmarshal(msg, &rec.Config); err != nil {
		return eris.Wrap(err, "record: decode config")
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(msg, &keys); err != nil {
		return eris.Wrap(err, "record: decode config keys")
	}
	for key, v := range keys {
		if model.KnownConfigKeys[key] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return eris.Wrapf(err, "record: decode config %q", key)
		}
		rec.ConfigExtra[key] = val
	}
	return nil
}

// ResolvePredictionsPath resolves a relative predictions path against the
// directory of the result file that named it, then against dataDir. Absolute
// paths and empty paths are returned unchanged. When neither candidate
// exists, the result-relative path is returned so the caller reports it.
func ResolvePredictionsPath(p, resultFile, dataDir string, exists func(string) bool) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	local := filepath.Join(filepath.Dir(resultFile), p)
	if exists(local) {
		return local
	}
	if dataDir != "" {
		if fromData := filepath.Join(dataDir, p); exists(fromData) {
			return fromData
		}
	}
	return local
}
