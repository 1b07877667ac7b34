package notify

import (
	"becoming_backend/internal/model"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand Float64 返回固定值，Intn 返回 i 对 n 取模
type fixedRand struct {
	f float64
	i int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) Intn(n int) int   { return r.i % n }

func TestLoadTemplateBank(t *testing.T) {
	bank, err := LoadTemplateBank()
	require.NoError(t, err)

	for _, tone := range model.Tones {
		assert.Greater(t, bank.Size(tone), 0, tone)
	}
	assert.Equal(t, bank.Size(model.ToneGentle), bank.Size(model.Tone("unknown")))
}

func TestPickAvoidsPreviousIndices(t *testing.T) {
	bank, err := LoadTemplateBank()
	require.NoError(t, err)

	size := bank.Size(model.ToneDirect)
	var avoid []int
	for i := 0; i < size; i++ {
		if i != 4 {
			avoid = append(avoid, i)
		}
	}

	for seed := 0; seed < 10; seed++ {
		pick := bank.Pick(model.ToneDirect, "Calm Parent", avoid, fixedRand{i: seed})
		assert.Equal(t, 4, pick.Index)
		assert.True(t, pick.Category.Valid())
		assert.NotContains(t, pick.Text, identityPlaceholder)
	}
}

func TestPickResetsWhenEverythingAvoided(t *testing.T) {
	bank, err := LoadTemplateBank()
	require.NoError(t, err)

	size := bank.Size(model.ToneGentle)
	all := make([]int, size)
	for i := range all {
		all[i] = i
	}

	pick := bank.Pick(model.ToneGentle, "Writer", all, fixedRand{i: 2})
	assert.Equal(t, 2, pick.Index)
}

func TestIndexOfAndRecentIndices(t *testing.T) {
	bank, err := LoadTemplateBank()
	require.NoError(t, err)

	pick := bank.Pick(model.ToneMotivational, "Marathoner", nil, fixedRand{i: 3})
	assert.Equal(t, pick.Index, bank.IndexOf(model.ToneMotivational, pick.Text, "Marathoner"))
	assert.Equal(t, -1, bank.IndexOf(model.ToneMotivational, pick.Text, "Someone else"))

	indices := bank.RecentIndices(model.ToneMotivational, "Marathoner", []string{"free text", pick.Text})
	assert.Equal(t, []int{pick.Index}, indices)
}

func TestParseTemplateBankRejectsBadData(t *testing.T) {
	cases := map[string]string{
		"missing tone": `
gentle:
  - text: "a {identity}"
    category: inquiry
direct:
  - text: "b"
    category: insight
`,
		"bad category": `
gentle:
  - text: "a"
    category: poem
direct:
  - text: "b"
    category: insight
motivational:
  - text: "c"
    category: manifesto
`,
		"unknown tone": `
gentle: [{text: a, category: inquiry}]
direct: [{text: b, category: inquiry}]
motivational: [{text: c, category: inquiry}]
sarcastic: [{text: d, category: inquiry}]
`,
	}
	for name, data := range cases {
		_, err := ParseTemplateBank([]byte(strings.TrimSpace(data)))
		assert.Error(t, err, name)
	}
}
