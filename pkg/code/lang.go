package code

import (
	"errors"
	"strings"
	"sync/atomic"
)

// lang type, used to store English and Chinese text
// lang 类型，用来存储英文和中文文本
type lang struct {
	en    string // English // 英文
	zh_cn string // Chinese // 中文
}

const (
	LangEN = "en"
	LangZH = "zh_cn"

	FALLBACK_LNG = LangEN
)

// lng holds the process-wide message language
// lng 保存进程级的消息语言
var lng atomic.Value

func init() {
	lng.Store(FALLBACK_LNG)
}

// GetMessage returns the message in the current global language
// GetMessage 根据当前全局语言返回消息
func (l lang) GetMessage() string {
	return l.Message(GetGlobalDefaultLang())
}

// Message returns the message in the given language, falling back to English
// Message 返回指定语言的消息，缺失时回退到英文
func (l lang) Message(language string) string {
	switch normalize(language) {
	case LangZH:
		if l.zh_cn != "" {
			return l.zh_cn
		}
	case LangEN:
		if l.en != "" {
			return l.en
		}
	}
	if l.en != "" {
		return l.en
	}
	return l.zh_cn
}

// GetSupportedLanguages returns all languages carried by lang
// GetSupportedLanguages 返回 lang 支持的所有语言
func GetSupportedLanguages() []string {
	return []string{LangEN, LangZH}
}

// SetGlobalDefaultLang sets the global default language
// SetGlobalDefaultLang 设置全局默认语言
func SetGlobalDefaultLang(language string) error {
	language = normalize(language)
	for _, l := range GetSupportedLanguages() {
		if language == l {
			lng.Store(language)
			return nil
		}
	}
	lng.Store(FALLBACK_LNG)
	return errors.New("unsupported language type, set defaulting to " + FALLBACK_LNG)
}

// GetGlobalDefaultLang gets the global default language
// GetGlobalDefaultLang 获取全局默认语言
func GetGlobalDefaultLang() string {
	if v, ok := lng.Load().(string); ok && v != "" {
		return v
	}
	return FALLBACK_LNG
}

func normalize(language string) string {
	language = strings.ToLower(strings.ReplaceAll(language, "-", "_"))
	if language == "zh" || strings.HasPrefix(language, "zh_") {
		return LangZH
	}
	return language
}
