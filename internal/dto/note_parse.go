package dto

// StructValidator validates typed records after the schema pass
// StructValidator 在结构校验后对类型化记录做规则校验
type StructValidator interface {
	ValidateStruct(obj any, locale string) error
}

// Parser turns raw `input` values into typed records
// Parser 将原始 input 转换为类型化记录
type Parser struct {
	validator   StructValidator
	locale      string
	maxPageSize int
}

// NewParser 创建解析器，maxPageSize <= 0 时不限制 limit
func NewParser(v StructValidator, locale string, maxPageSize int) *Parser {
	return &Parser{validator: v, locale: locale, maxPageSize: maxPageSize}
}

func (p *Parser) validate(obj any) error {
	if p.validator == nil {
		return nil
	}
	return p.validator.ValidateStruct(obj, p.locale)
}

// ParseCreateNote 解析 createNote 的输入
func (p *Parser) ParseCreateNote(input any) (*CreateNoteInput, error) {
	m, err := CreateNoteSchema.Parse(input)
	if err != nil {
		return nil, err
	}
	in := &CreateNoteInput{
		Title:     m["title"].(string),
		Content:   m["content"].(string),
		Category:  optString(m, "category"),
		Published: optBool(m, "published"),
	}
	if err := p.validate(in); err != nil {
		return nil, err
	}
	return in, nil
}

// ParseNoteID 解析 { noteId } 输入
func (p *Parser) ParseNoteID(input any) (string, error) {
	m, err := NoteIDSchema.Parse(input)
	if err != nil {
		return "", err
	}
	return m["noteId"].(string), nil
}

// ParseUpdateNote 解析 { noteId, body } 输入，body 缺失视为空更新
func (p *Parser) ParseUpdateNote(input any) (string, *UpdateNoteInput, error) {
	m, err := UpdateNoteRequestSchema.Parse(input)
	if err != nil {
		return "", nil, err
	}
	body, _ := m["body"].(map[string]any)
	in := &UpdateNoteInput{
		Title:     optString(body, "title"),
		Content:   optString(body, "content"),
		Category:  optString(body, "category"),
		Published: optBool(body, "published"),
	}
	if err := p.validate(in); err != nil {
		return "", nil, err
	}
	return m["noteId"].(string), in, nil
}

// ParseNoteFilter 解析分页参数
// limit / page 为 0 或负数时使用默认值，limit 不超过 maxPageSize
func (p *Parser) ParseNoteFilter(input any) (*NoteFilterInput, error) {
	m, err := NoteFilterSchema.Parse(input)
	if err != nil {
		return nil, err
	}
	in := &NoteFilterInput{
		Limit: m["limit"].(int),
		Page:  m["page"].(int),
	}
	if in.Limit <= 0 {
		in.Limit = DefaultPageSize
	}
	if in.Page <= 0 {
		in.Page = DefaultPage
	}
	if p.maxPageSize > 0 && in.Limit > p.maxPageSize {
		in.Limit = p.maxPageSize
	}
	return in, nil
}

func optString(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}

func optBool(m map[string]any, key string) *bool {
	if b, ok := m[key].(bool); ok {
		return &b
	}
	return nil
}
