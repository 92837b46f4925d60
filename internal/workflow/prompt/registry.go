package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptAllgemeinesV1   PromptID = "allgemeines_v1"
	PromptErschliessungV1 PromptID = "erschliessung_v1"
	PromptKG410V1         PromptID = "kg410_v1"
	PromptKG420V1         PromptID = "kg420_v1"
	PromptKG434V1         PromptID = "kg434_v1"
	PromptKG430V1         PromptID = "kg430_v1"
	PromptKG440V1         PromptID = "kg440_v1"
	PromptKG470V1         PromptID = "kg470_v1"
	PromptKG480V1         PromptID = "kg480_v1"
	PromptCostBreakdownV1 PromptID = "cost_breakdown_v1"
)

// knownPrompts 模板文件按 <id>.system.txt / <id>.user.txt 约定命名
var knownPrompts = map[PromptID]struct{}{
	PromptAllgemeinesV1:   {},
	PromptErschliessungV1: {},
	PromptKG410V1:         {},
	PromptKG420V1:         {},
	PromptKG434V1:         {},
	PromptKG430V1:         {},
	PromptKG440V1:         {},
	PromptKG470V1:         {},
	PromptKG480V1:         {},
	PromptCostBreakdownV1: {},
}

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

// ChatTemplate 按 ID 返回缓存的 eino ChatTemplate，首次访问时从内嵌文件加载
func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	if _, ok := knownPrompts[id]; !ok {
		return nil, fmt.Errorf("unknown prompt id: %s", id)
	}
	system, err := readEmbeddedText(fmt.Sprintf("templates/%s.system.txt", id))
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(fmt.Sprintf("templates/%s.user.txt", id))
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
