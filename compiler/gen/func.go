package gen

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

var (
	acronyms = make(map[string]struct{})
	rules    = ruleset()
)

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	// Add common initialisms from golint and more.
	for _, w := range []string{
		"ACL", "API", "ASCII", "AWS", "CPU", "CSS", "DNS", "EOF", "GB", "GUID",
		"HCL", "HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "KB", "LHS", "MAC",
		"MB", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP", "SQL", "SSH", "SSO",
		"TCP", "TLS", "TTL", "UDP", "UI", "UID", "URI", "URL", "UTF8", "UUID",
		"VM", "XML", "XMPP", "XSRF", "XSS",
	} {
		acronyms[w] = struct{}{}
		rules.AddAcronym(w)
	}
	return rules
}

// snake converts the given struct or field name into a snake_case.
//
//	Username => username
//	FullName => full_name
//	HTTPCode => http_code
//	authorId => author_id
func snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// Put '_' if it is not a start or end of a word, current letter is uppercase,
		// and previous is lowercase (cases like: "UserInfo"), or next letter is also
		// a lowercase and previous letter is not "_".
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteString("_")
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// words splits a camelCase, PascalCase, snake_case or kebab-case
// identifier into lower-case words.
func words(s string) []string {
	return strings.FieldsFunc(snake(s), func(r rune) bool {
		return r == '_' || r == '-'
	})
}

// pascal converts the given name into a PascalCase, upper-casing
// well-known initialisms.
//
//	user_info => UserInfo
//	authorId  => AuthorID
//	full-admin => FullAdmin
func pascal(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(pascalWord(w))
	}
	return b.String()
}

func pascalWord(w string) string {
	if upper := strings.ToUpper(w); isAcronym(upper) {
		return upper
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

func isAcronym(s string) bool {
	_, ok := acronyms[s]
	return ok
}

// camel converts the given name into a camelCase.
//
//	user_info => userInfo
//	user_id   => userID
//	http_code => httpCode
func camel(s string) string {
	ws := words(s)
	if len(ws) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(ws[0])
	for _, w := range ws[1:] {
		b.WriteString(pascalWord(w))
	}
	return b.String()
}

// singular returns the PascalCase singular lookup name of a list relation
// field. Names without a distinct singular form get the "One" suffix.
//
//	posts => Post
//	news  => NewsOne
func singular(name string) string {
	s := rules.Singularize(name)
	if s == "" || s == name {
		return pascal(name) + "One"
	}
	return pascal(s)
}

// hiddenField returns the unexported struct field name of a hidden field.
func hiddenField(name string) string {
	return "_" + name
}

// structTag returns the struct tags of a plain field.
func structTag(name string) map[string]string {
	return map[string]string{"json": name}
}

// inputTag returns the struct tags of a relation payload field.
func inputTag(name string) map[string]string {
	return map[string]string{"json": name + ",omitempty"}
}
