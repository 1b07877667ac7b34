package notify

import (
	"becoming_backend/internal/model"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templateData []byte

const identityPlaceholder = "{identity}"

// Template 内容池中的一条模板
type Template struct {
	Text     string               `yaml:"text"`
	Category model.SignalCategory `yaml:"category"`
}

// Render 替换 {identity} 占位符
func (t Template) Render(identity string) string {
	return strings.ReplaceAll(t.Text, identityPlaceholder, identity)
}

// TemplatePick 一次挑选的结果
type TemplatePick struct {
	Text     string
	Category model.SignalCategory
	Index    int
}

// TemplateBank 按语气分组的静态内容池
type TemplateBank struct {
	pools map[model.Tone][]Template
}

// LoadTemplateBank 解析内嵌的模板数据
func LoadTemplateBank() (*TemplateBank, error) {
	return ParseTemplateBank(templateData)
}

func ParseTemplateBank(data []byte) (*TemplateBank, error) {
	var raw map[model.Tone][]Template
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	for tone := range raw {
		if !tone.Valid() {
			return nil, fmt.Errorf("unknown tone %q in templates", tone)
		}
	}
	for _, tone := range model.Tones {
		pool := raw[tone]
		if len(pool) == 0 {
			return nil, fmt.Errorf("no templates for tone %q", tone)
		}
		for i, t := range pool {
			if strings.TrimSpace(t.Text) == "" {
				return nil, fmt.Errorf("template %s[%d] has empty text", tone, i)
			}
			if !t.Category.Valid() {
				return nil, fmt.Errorf("template %s[%d] has invalid category %q", tone, i, t.Category)
			}
		}
	}
	return &TemplateBank{pools: raw}, nil
}

func (b *TemplateBank) pool(tone model.Tone) []Template {
	return b.pools[tone.OrDefault()]
}

// Size 某种语气的模板数量
func (b *TemplateBank) Size(tone model.Tone) int {
	return len(b.pool(tone))
}

// Pick 随机挑选一条不在 avoid 中的模板；全部被避开时从整个池中挑选
func (b *TemplateBank) Pick(tone model.Tone, identity string, avoid []int, rnd Rand) TemplatePick {
	pool := b.pool(tone)

	skip := make(map[int]struct{}, len(avoid))
	for _, i := range avoid {
		skip[i] = struct{}{}
	}

	candidates := make([]int, 0, len(pool))
	for i := range pool {
		if _, ok := skip[i]; !ok {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		for i := range pool {
			candidates = append(candidates, i)
		}
	}

	index := candidates[rnd.Intn(len(candidates))]
	return TemplatePick{
		Text:     pool[index].Render(identity),
		Category: pool[index].Category,
		Index:    index,
	}
}

// IndexOf 查找渲染后文本对应的模板下标，找不到返回 -1
func (b *TemplateBank) IndexOf(tone model.Tone, text, identity string) int {
	for i, t := range b.pool(tone) {
		if t.Render(identity) == text {
			return i
		}
	}
	return -1
}

// RecentIndices 把最近的信号文本映射为应避开的模板下标
func (b *TemplateBank) RecentIndices(tone model.Tone, identity string, texts []string) []int {
	var indices []int
	for _, text := range texts {
		if i := b.IndexOf(tone, text, identity); i >= 0 {
			indices = append(indices, i)
		}
	}
	return indices
}
