package manifest_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/corepm/internal/adapters/manifest"
	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/corepm/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
	"gopkg.in/yaml.v3"
)

func sampleManifest() *domain.Manifest {
	m := domain.NewManifest("acme_ip_top_1_0", "top")
	m.Files = append(m.Files,
		domain.ManifestFile{Name: "../../b/b.v", FileType: "verilogSource", Core: "acme:ip:b:1.0"},
		domain.ManifestFile{Name: "../../a/a.v", FileType: "verilogSource", Core: "acme:ip:top:1.0"},
	)
	m.Parameters["width"] = domain.ManifestParameter{Datatype: "int", Default: 16, Paramtype: "vlogparam"}
	m.ToolOptions["icarus"] = map[string]any{"iverilog_options": []any{"-g2012"}}
	m.Dependencies["acme:ip:top:1.0"] = []string{"acme:ip:b:1.0"}
	return m
}

func TestWriter_Write(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	fw := mocks.NewMockFileWriter(ctrl)

	var written []byte
	fw.EXPECT().WriteFile("/work/acme_ip_top_1_0.eda.yml", gomock.Any()).
		DoAndReturn(func(_ string, data []byte) (bool, error) {
			written = data
			return true, nil
		})

	changed, err := manifest.NewWriter(fw).Write("/work/acme_ip_top_1_0.eda.yml", sampleManifest())
	require.NoError(t, err)
	assert.True(t, changed)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(written, &decoded))
	assert.Equal(t, domain.ManifestVersion, decoded["version"])
	assert.Equal(t, "top", decoded["toplevel"])

	files, ok := decoded["files"].([]any)
	require.True(t, ok)
	require.Len(t, files, 2)
	assert.Equal(t, "../../b/b.v", files[0].(map[string]any)["name"])

	params := decoded["parameters"].(map[string]any)
	assert.Equal(t, 16, params["width"].(map[string]any)["default"])
}

func TestEncode_Deterministic(t *testing.T) {
	t.Parallel()

	first, err := manifest.Encode(sampleManifest())
	require.NoError(t, err)
	for range 5 {
		again, err := manifest.Encode(sampleManifest())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestWriter_WriteError(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	fw := mocks.NewMockFileWriter(ctrl)
	fw.EXPECT().WriteFile(gomock.Any(), gomock.Any()).Return(false, errors.New("disk full"))

	_, err := manifest.NewWriter(fw).Write("/work/x.eda.yml", sampleManifest())
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to write manifest")
}
