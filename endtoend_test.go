package main

import (
	"embed"
	"strings"
	"testing"

	"github.com/TinsPHP/tins-symbols-sub001/internal/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// embeds the test folder
//
//go:embed test
var testSet embed.FS

func TestRootEndToEnd(t *testing.T) {
	files, err := testSet.ReadDir("test")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}
		t.Run(f.Name(), func(t *testing.T) {
			s, err := scenario.Load(testSet, "test/"+f.Name())
			require.NoError(t, err)
			results, err := scenario.Run(s, scenario.Options{DefaultConversions: true})
			require.NoError(t, err)
			require.Len(t, results, len(s.Functions))
			for _, res := range results {
				assert.Empty(t, res.Mismatches, "in function %s", res.Name)
			}
		})
	}
}
