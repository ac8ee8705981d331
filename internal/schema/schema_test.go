package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSchema = `
features: [id, Gender, Age, Vehicle_Age, Response]
numerical_features: [Age]
categorical_features: [Gender, Vehicle_Age]
target: Response
drop_features: [id]
label_encoding:
  Gender: {Female: 1, Male: 0}
one_hot_features: [Vehicle_Age]
rename_features:
  "Vehicle_Age_< 1 Year": Vehicle_Age_lt_1_Year
normalization_features: [Age]
`

func writeSchema(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	s, err := Load(writeSchema(t, sampleSchema))
	require.NoError(t, err)

	assert.Len(t, s.Features, 5)
	assert.Equal(t, "Response", s.Target)
	assert.Equal(t, 1.0, s.LabelEncoding["Gender"]["Female"])
	assert.Equal(t, "Vehicle_Age_lt_1_Year", s.RenameFeatures["Vehicle_Age_< 1 Year"])
}

func TestLoadRejectsMissingTarget(t *testing.T) {
	_, err := Load(writeSchema(t, "features: [a, b]\n"))
	assert.ErrorContains(t, err, "no target")
}

func TestLoadRejectsUnknownTarget(t *testing.T) {
	_, err := Load(writeSchema(t, "features: [a, b]\ntarget: c\n"))
	assert.ErrorContains(t, err, "not among declared features")
}

func TestLoadRejectsUnknownEncodedColumn(t *testing.T) {
	body := "features: [a, b]\ntarget: b\nlabel_encoding:\n  c: {x: 1}\n"
	_, err := Load(writeSchema(t, body))
	assert.ErrorContains(t, err, "unknown column")
}
