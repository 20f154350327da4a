package service

// ValidationResult 批量校验结果，Errors 列出全部失败原因
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ErrorCollector 收集校验消息，零值可用
type ErrorCollector struct {
	errs []string
}

func (c *ErrorCollector) Add(msg string) {
	if msg != "" {
		c.errs = append(c.errs, msg)
	}
}

func (c *ErrorCollector) AddMany(msgs []string) {
	for _, m := range msgs {
		c.Add(m)
	}
}

func (c *ErrorCollector) AddIf(cond bool, msg string) {
	if cond {
		c.Add(msg)
	}
}

func (c *ErrorCollector) Errors() []string {
	return append([]string{}, c.errs...)
}

func (c *ErrorCollector) HasErrors() bool { return len(c.errs) > 0 }

func (c *ErrorCollector) Reset() { c.errs = nil }

func (c *ErrorCollector) Result() ValidationResult {
	return ValidationResult{Valid: !c.HasErrors(), Errors: c.Errors()}
}
