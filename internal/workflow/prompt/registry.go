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
	PromptClarifyV1       PromptID = "clarify_v1"
	PromptSiteStructureV1 PromptID = "site_structure_v1"
	PromptSiteSEOV1       PromptID = "site_seo_v1"
	PromptSiteContentV1   PromptID = "site_content_v1"
	PromptSiteDesignV1    PromptID = "site_design_v1"
)

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

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

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	system, err := readEmbeddedText(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(userPath)
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

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	switch id {
	case PromptClarifyV1:
		return "templates/clarify_v1.system.txt", "templates/clarify_v1.user.txt", nil
	case PromptSiteStructureV1:
		return "templates/site_structure_v1.system.txt", "templates/site_structure_v1.user.txt", nil
	case PromptSiteSEOV1:
		return "templates/site_seo_v1.system.txt", "templates/site_seo_v1.user.txt", nil
	case PromptSiteContentV1:
		return "templates/site_content_v1.system.txt", "templates/site_content_v1.user.txt", nil
	case PromptSiteDesignV1:
		return "templates/site_design_v1.system.txt", "templates/site_design_v1.user.txt", nil
	default:
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
