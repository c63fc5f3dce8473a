package source

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SentinelKeyword is used when no technology keyword matches.
const SentinelKeyword = "стажировка"

var DefaultTechKeywords = []string{
	"python", "java", "javascript", "typescript", "c", "c++", "c#", "go", "golang",
	"ruby", "php", "swift", "kotlin", "scala", "dart", "r", "perl", "rust",
	"objective-c", "lua", "haskell", "matlab", "vb.net", "assembly",
	"html", "html5", "css", "css3", "sass", "less", "tailwindcss", "bootstrap",
	"react", "angular", "vue", "svelte", "next.js", "nuxt.js", "jquery",
	"redux", "mobx",
	"node.js", "express.js", "django", "flask", "spring", "spring boot",
	"fastapi", "nestjs", "asp.net", "laravel", "symfony", "rails", "gin", "fiber",
	"mysql", "postgresql", "mariadb", "sqlite", "mongodb", "redis",
	"cassandra", "elasticsearch", "clickhouse", "oracle", "mssql", "influxdb",
	"firebase", "dynamodb", "neo4j",
	"docker", "kubernetes", "ansible", "terraform", "jenkins", "github actions",
	"gitlab ci/cd", "vagrant", "prometheus", "grafana", "nagios", "zabbix",
	"git", "svn", "mercurial",
	"linux", "unix", "windows server", "macos", "freebsd", "bash", "powershell",
	"android", "ios", "react native", "flutter", "xamarin", "cordova",
	"aws", "azure", "gcp", "yandex cloud", "heroku", "digitalocean",
	"selenium", "junit", "pytest", "jest", "cypress", "mocha", "chai", "testng",
	"sonarqube", "eslint", "prettier", "black", "flake8", "checkstyle", "coverage.py",
	"numpy", "pandas", "scikit-learn", "tensorflow", "keras", "pytorch",
	"xgboost", "matplotlib", "seaborn", "opencv", "nltk", "spacy",
	"hadoop", "spark", "kafka", "hive", "airflow", "databricks",
	"tableau", "power bi", "looker", "talend", "pentaho",
	"wordpress", "drupal", "joomla", "magento", "shopify", "bitrix", "1c-bitrix",
	"oauth", "jwt", "ssl", "tls", "saml", "openvpn",
	"rest", "graphql", "soap", "grpc", "websocket", "json", "xml", "openapi",
	"arduino", "raspberry pi", "esp32", "mqtt", "modbus",
	"unity", "unreal engine", "blender", "three.js", "webgl", "opengl", "vulkan",
	"notion", "jira", "confluence", "figma", "postman", "swagger", "wireshark",
	"metabase", "airtable", "zapier",
}

// MatchKeywords returns the vocabulary entries that occur in text as whole
// tokens, in vocabulary order. It never returns an empty list: when nothing
// matches the result is the sentinel keyword alone.
func MatchKeywords(text string, vocabulary []string) []string {
	lower := strings.ToLower(text)

	var matched []string
	for _, kw := range vocabulary {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && containsToken(lower, kw) {
			matched = append(matched, kw)
		}
	}

	if len(matched) == 0 {
		return []string{SentinelKeyword}
	}
	return matched
}

// JoinKeywords renders keywords the way they are stored.
func JoinKeywords(keywords []string) *string {
	if len(keywords) == 0 {
		return nil
	}
	s := strings.Join(keywords, ", ")
	return &s
}

func containsToken(text, token string) bool {
	for offset := 0; offset <= len(text)-len(token); {
		i := strings.Index(text[offset:], token)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(token)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isTokenRune(before)) && (end == len(text) || !isTokenRune(after)) {
			return true
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#'
}
