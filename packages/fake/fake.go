package fake

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Func generates one fake value from optional string arguments.
type Func func(args []string) string

// Generator dispatches fake.<method>(<args>) calls to registered functions.
type Generator struct {
	funcs map[string]Func
}

func New() *Generator {
	g := &Generator{
		funcs: make(map[string]Func),
	}
	g.registerDefaults()
	return g
}

// Register adds or replaces a generator method.
func (g *Generator) Register(name string, fn Func) {
	g.funcs[name] = fn
}

// Has reports whether a method is registered.
func (g *Generator) Has(name string) bool {
	_, ok := g.funcs[name]
	return ok
}

// Invoke calls a method by name. The name may omit parentheses; arguments are
// the already-split call arguments.
func (g *Generator) Invoke(name string, args []string) (string, error) {
	fn, ok := g.funcs[name]
	if !ok {
		return "", fmt.Errorf("unknown generator method: fake.%s", name)
	}
	return fn(args), nil
}

// Call parses a call expression like "uuid4()" or "random_number(6)" and
// invokes it. A bare method name without parentheses is accepted.
func (g *Generator) Call(expr string) (string, error) {
	name := strings.TrimSpace(expr)
	var args []string
	if i := strings.Index(name, "("); i >= 0 {
		j := strings.LastIndex(name, ")")
		if j < i {
			return "", fmt.Errorf("malformed generator call: fake.%s", expr)
		}
		args = splitArgs(name[i+1 : j])
		name = name[:i]
	}
	return g.Invoke(name, args)
}

// splitArgs splits a comma-separated argument list, honoring single and
// double quotes.
func splitArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !inQuote && (ch == '"' || ch == '\'') {
			inQuote = true
			quoteChar = ch
		} else if inQuote && ch == quoteChar {
			inQuote = false
			quoteChar = 0
		} else if !inQuote && ch == ',' {
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		} else {
			current.WriteByte(ch)
		}
	}

	if current.Len() > 0 {
		args = append(args, strings.TrimSpace(current.String()))
	}
	return args
}

func (g *Generator) registerDefaults() {
	g.funcs["uuid4"] = func(_ []string) string { return uuid.New().String() }
	g.funcs["name"] = func(_ []string) string { return pick(firstNames) + " " + pick(lastNames) }
	g.funcs["first_name"] = func(_ []string) string { return pick(firstNames) }
	g.funcs["last_name"] = func(_ []string) string { return pick(lastNames) }
	g.funcs["user_name"] = fakeUserName
	g.funcs["email"] = fakeEmail
	g.funcs["password"] = func(args []string) string {
		return randomString(argInt(args, 0, 12), charsetPassword)
	}
	g.funcs["phone_number"] = fakePhoneNumber
	g.funcs["address"] = fakeAddress
	g.funcs["street_address"] = fakeStreetAddress
	g.funcs["city"] = func(_ []string) string { return pick(cities) }
	g.funcs["state"] = func(_ []string) string { return pick(states) }
	g.funcs["zipcode"] = func(_ []string) string { return fmt.Sprintf("%05d", rand.Intn(100000)) }
	g.funcs["country"] = func(_ []string) string { return pick(countries) }
	g.funcs["company"] = func(_ []string) string { return pick(companies) }
	g.funcs["url"] = func(_ []string) string { return "https://" + pick(domains) + "/" + pick(words) }
	g.funcs["image_url"] = func(_ []string) string {
		return fmt.Sprintf("https://picsum.photos/%d/%d", 200+rand.Intn(600), 200+rand.Intn(600))
	}
	g.funcs["word"] = func(_ []string) string { return pick(words) }
	g.funcs["sentence"] = fakeSentence
	g.funcs["text"] = fakeText
	g.funcs["iso8601"] = func(_ []string) string { return time.Now().UTC().Format(time.RFC3339) }
	g.funcs["date"] = func(args []string) string {
		format := "2006-01-02"
		if len(args) > 0 && args[0] != "" {
			format = args[0]
		}
		return time.Now().UTC().Format(format)
	}
	g.funcs["boolean"] = func(_ []string) string { return strconv.FormatBool(rand.Intn(2) == 0) }
	g.funcs["random_number"] = fakeRandomNumber
	g.funcs["random_int"] = fakeRandomInt
	g.funcs["random_string"] = func(args []string) string {
		return randomString(argInt(args, 0, 10), charsetAlnum)
	}
}

func fakeUserName(_ []string) string {
	return strings.ToLower(pick(firstNames)) + strconv.Itoa(rand.Intn(1000))
}

func fakeEmail(_ []string) string {
	return strings.ToLower(pick(firstNames)+"."+pick(lastNames)) + "@" + pick(domains)
}

func fakePhoneNumber(_ []string) string {
	return fmt.Sprintf("+1-%03d-%03d-%04d", 200+rand.Intn(800), rand.Intn(1000), rand.Intn(10000))
}

func fakeStreetAddress(_ []string) string {
	return fmt.Sprintf("%d %s", 1+rand.Intn(9999), pick(streets))
}

func fakeAddress(_ []string) string {
	return fmt.Sprintf("%s, %s, %s %05d", fakeStreetAddress(nil), pick(cities), pick(states), rand.Intn(100000))
}

func fakeSentence(_ []string) string {
	n := 5 + rand.Intn(6)
	parts := make([]string, n)
	for i := range parts {
		parts[i] = pick(words)
	}
	parts[0] = strings.ToUpper(parts[0][:1]) + parts[0][1:]
	return strings.Join(parts, " ") + "."
}

func fakeText(args []string) string {
	n := argInt(args, 0, 3)
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fakeSentence(nil)
	}
	return strings.Join(parts, " ")
}

// fakeRandomNumber returns a number with the given count of digits
// (default 10).
func fakeRandomNumber(args []string) string {
	digits := argInt(args, 0, 10)
	if digits < 1 {
		digits = 1
	}
	if digits > 18 {
		digits = 18
	}
	min := int64(1)
	for i := 1; i < digits; i++ {
		min *= 10
	}
	if digits == 1 {
		min = 0
	}
	max := min*10 - 1
	if digits == 1 {
		max = 9
	}
	return strconv.FormatInt(min+rand.Int63n(max-min+1), 10)
}

func fakeRandomInt(args []string) string {
	lo, hi := 0, 100
	if len(args) >= 2 {
		lo = argInt(args, 0, lo)
		hi = argInt(args, 1, hi)
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return strconv.Itoa(lo + rand.Intn(hi-lo+1))
}

func argInt(args []string, idx, fallback int) int {
	if idx >= len(args) {
		return fallback
	}
	v, err := strconv.Atoi(args[idx])
	if err != nil {
		return fallback
	}
	return v
}

const (
	charsetAlnum    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	charsetPassword = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!#%+"
)

func randomString(length int, charset string) string {
	if length < 1 {
		length = 1
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

func pick(list []string) string {
	return list[rand.Intn(len(list))]
}

var (
	firstNames = []string{"Alice", "Bruno", "Carla", "Diego", "Elena", "Felix", "Greta", "Hugo", "Ivy", "Jonas", "Keiko", "Liam", "Mara", "Noah", "Olga", "Pavel"}
	lastNames  = []string{"Alvarez", "Becker", "Chen", "Dubois", "Eriksen", "Fischer", "Garcia", "Haddad", "Ito", "Johansson", "Kowalski", "Lopez", "Martins", "Novak", "Okafor", "Petrov"}
	cities     = []string{"Austin", "Berlin", "Cusco", "Dublin", "Esbjerg", "Fukuoka", "Ghent", "Hanoi", "Izmir", "Jaipur", "Krakow", "Limerick", "Medellin", "Nairobi", "Oslo", "Porto"}
	states     = []string{"AZ", "CA", "CO", "FL", "GA", "IL", "MA", "NC", "NY", "OH", "OR", "TX", "VA", "WA"}
	countries  = []string{"Argentina", "Brazil", "Canada", "Denmark", "Estonia", "France", "Germany", "Hungary", "Ireland", "Japan", "Kenya", "Mexico", "Norway", "Portugal", "Spain", "Vietnam"}
	streets    = []string{"Oak Street", "Maple Avenue", "Cedar Lane", "Elm Drive", "Pine Road", "Birch Boulevard", "Willow Way", "Chestnut Court", "Juniper Place", "Aspen Terrace"}
	companies  = []string{"Acme Corp", "Globex", "Initech", "Umbrella Labs", "Stark Industries", "Wayne Enterprises", "Hooli", "Vandelay Industries", "Wonka Works", "Tyrell Systems"}
	domains    = []string{"example.com", "example.org", "example.net", "mail.test", "inbox.test", "post.test"}
	words      = []string{"amber", "breeze", "cobalt", "dusk", "ember", "fjord", "glade", "harbor", "iris", "juniper", "kestrel", "lagoon", "meadow", "nectar", "opal", "prairie", "quartz", "ripple", "summit", "thicket"}
)
