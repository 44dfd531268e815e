package enrichment

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"aiPlanner/internal/models/task"

	"google.golang.org/genai"
)

// Draft это уже проверенный черновик задачи от модели
type Draft struct {
	Title             string
	Description       string
	Type              task.Type
	Priority          task.Priority
	Deadline          *time.Time
	Tags              []string
	Checklist         []string
	EstimatedDuration string
}

// Task превращает черновик в новую активную задачу
func (d Draft) Task(now time.Time) *task.Task {
	return task.New(now,
		task.WithTitle(d.Title),
		task.WithDescription(d.Description),
		task.WithType(d.Type),
		task.WithPriority(d.Priority),
		task.WithDeadline(d.Deadline),
		task.WithEstimatedDuration(d.EstimatedDuration),
		task.WithTags(d.Tags),
		task.WithChecklist(d.Checklist),
	)
}

type Enhancement struct {
	Description string   `json:"description"`
	Checklist   []string `json:"checklist"`
}

type Schedule struct {
	Deadline          time.Time `json:"deadline"`
	EstimatedDuration string    `json:"estimatedDuration"`
}

type rawDraft struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Type              string   `json:"type"`
	Priority          string   `json:"priority"`
	Deadline          *string  `json:"deadline"`
	Tags              []string `json:"tags"`
	Checklist         []string `json:"checklist"`
	EstimatedDuration string   `json:"estimatedDuration"`
}

type rawSchedule struct {
	Deadline          string `json:"deadline"`
	EstimatedDuration string `json:"estimatedDuration"`
}

func typeEnum() []string {
	out := make([]string, 0, len(task.Types))
	for _, t := range task.Types {
		out = append(out, string(t))
	}
	return out
}

func priorityEnum() []string {
	out := make([]string, 0, len(task.Priorities))
	for _, p := range task.Priorities {
		out = append(out, string(p))
	}
	return out
}

var stringList = &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}

// схемы responseSchema для generateContent
var (
	draftsSchema = &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":             {Type: genai.TypeString},
				"description":       {Type: genai.TypeString},
				"type":              {Type: genai.TypeString, Enum: typeEnum()},
				"deadline":          {Type: genai.TypeString, Description: "ISO 8601, omitted when there is no deadline"},
				"priority":          {Type: genai.TypeString, Enum: priorityEnum()},
				"tags":              stringList,
				"checklist":         stringList,
				"estimatedDuration": {Type: genai.TypeString},
			},
			Required: []string{"title", "type", "priority"},
		},
	}

	enhancementSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"description": {Type: genai.TypeString},
			"checklist":   stringList,
		},
		Required: []string{"description", "checklist"},
	}

	scheduleSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"deadline":          {Type: genai.TypeString, Description: "ISO 8601"},
			"estimatedDuration": {Type: genai.TypeString},
		},
		Required: []string{"deadline", "estimatedDuration"},
	}
)

// DecodeDrafts проверяет весь массив; один плохой черновик валит весь ответ
func DecodeDrafts(payload []byte, loc *time.Location) ([]Draft, error) {
	var raws []rawDraft
	if err := json.Unmarshal(payload, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	drafts := make([]Draft, 0, len(raws))
	for i, raw := range raws {
		d, err := raw.validate(loc)
		if err != nil {
			return nil, fmt.Errorf("%w: черновик %d: %v", ErrInvalidPayload, i, err)
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

func (r rawDraft) validate(loc *time.Location) (Draft, error) {
	d := Draft{
		Title:             strings.TrimSpace(r.Title),
		Description:       strings.TrimSpace(r.Description),
		Type:              task.Type(r.Type),
		Priority:          task.Priority(r.Priority),
		Tags:              cleanList(r.Tags),
		Checklist:         cleanList(r.Checklist),
		EstimatedDuration: strings.TrimSpace(r.EstimatedDuration),
	}

	if d.Title == "" {
		return Draft{}, fmt.Errorf("пустой title")
	}
	if !d.Type.Valid() {
		return Draft{}, fmt.Errorf("неизвестный type %q", r.Type)
	}
	if !d.Priority.Valid() {
		return Draft{}, fmt.Errorf("неизвестный priority %q", r.Priority)
	}

	if r.Deadline != nil {
		s := strings.TrimSpace(*r.Deadline)
		if s != "" && s != "null" {
			deadline, err := task.ParseDeadline(s, loc)
			if err != nil {
				return Draft{}, fmt.Errorf("deadline %q: %v", s, err)
			}
			d.Deadline = &deadline
		}
	}
	return d, nil
}

func DecodeEnhancement(payload []byte) (*Enhancement, error) {
	var e Enhancement
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	e.Description = strings.TrimSpace(e.Description)
	e.Checklist = cleanList(e.Checklist)
	if e.Description == "" && len(e.Checklist) == 0 {
		return nil, fmt.Errorf("%w: пустое описание и чеклист", ErrInvalidPayload)
	}
	return &e, nil
}

func DecodeSchedule(payload []byte, loc *time.Location) (*Schedule, error) {
	var raw rawSchedule
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	deadline, err := task.ParseDeadline(strings.TrimSpace(raw.Deadline), loc)
	if err != nil {
		return nil, fmt.Errorf("%w: deadline %q: %v", ErrInvalidPayload, raw.Deadline, err)
	}
	return &Schedule{Deadline: deadline, EstimatedDuration: strings.TrimSpace(raw.EstimatedDuration)}, nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
