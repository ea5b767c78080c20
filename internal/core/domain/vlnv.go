package domain

import (
	"cmp"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Relation is the comparison operator attached to a VLNV in a dependency.
type Relation string

// Supported relations. RelationNone on a versioned VLNV behaves like RelationEQ.
const (
	RelationNone  Relation = ""
	RelationEQ    Relation = "=="
	RelationGE    Relation = ">="
	RelationLE    Relation = "<="
	RelationGT    Relation = ">"
	RelationLT    Relation = "<"
	RelationTilde Relation = "~"
	RelationCaret Relation = "^"
)

// relationPrefixes is ordered so that two-character operators win over
// their one-character prefixes.
var relationPrefixes = []struct {
	token string
	rel   Relation
}{
	{">=", RelationGE},
	{"<=", RelationLE},
	{"==", RelationEQ},
	{">", RelationGT},
	{"<", RelationLT},
	{"=", RelationEQ},
	{"~", RelationTilde},
	{"^", RelationCaret},
}

// VLNV is a Vendor:Library:Name:Version identifier, optionally carrying a
// revision and a relation when it is used as a dependency constraint.
// VLNV values are immutable; every operation returns a new value.
type VLNV struct {
	Vendor   string
	Library  string
	Name     string
	Version  string
	Revision int
	Relation Relation
}

// ParseVLNV parses a VLNV token. Accepted shapes are
// "[rel]vendor:library:name:version", "[rel]vendor:library:name" and the
// legacy single-field "name" or "name-version". A trailing "-rN" on the
// version is split into the revision. An unversioned token matches any
// version (version "0" with relation ">="); a relation on an unversioned
// token is rejected. defaultRelation applies to versioned tokens without
// an explicit relation.
func ParseVLNV(token string, defaultRelation Relation) (VLNV, error) {
	s := strings.TrimSpace(token)
	if s == "" {
		return VLNV{}, malformed(token, "empty identifier")
	}

	rel, rest := splitRelation(s)

	var v VLNV
	parts := strings.Split(rest, ":")
	switch len(parts) {
	case 1:
		v.Name, v.Version = splitLegacyName(parts[0])
	case 3:
		v.Vendor, v.Library, v.Name = parts[0], parts[1], parts[2]
	case 4:
		v.Vendor, v.Library, v.Name, v.Version = parts[0], parts[1], parts[2], parts[3]
	default:
		return VLNV{}, malformed(token, "expected vendor:library:name[:version]")
	}

	if v.Name == "" {
		return VLNV{}, malformed(token, "missing name")
	}
	for _, field := range []string{v.Vendor, v.Library, v.Name, v.Version} {
		if strings.ContainsAny(field, " \t\n?()!<>=~^") {
			return VLNV{}, malformed(token, "invalid character")
		}
	}

	if v.Version == "" {
		if rel != RelationNone {
			return VLNV{}, malformed(token, "relation requires a version")
		}
		v.Version = "0"
		v.Relation = RelationGE
		return v, nil
	}

	v.Version, v.Revision = splitRevision(v.Version)
	if v.Version == "" {
		return VLNV{}, malformed(token, "missing version")
	}

	v.Relation = rel
	if rel == RelationNone {
		v.Relation = defaultRelation
	}
	if v.Relation == RelationTilde || v.Relation == RelationCaret {
		if _, ok := bumpVersion(v.Version, v.Relation); !ok {
			return VLNV{}, malformed(token, "range operator needs a numeric version")
		}
	}
	return v, nil
}

// MustParseVLNV is like ParseVLNV but panics on error. It is intended for
// tests and static tables.
func MustParseVLNV(token string) VLNV {
	v, err := ParseVLNV(token, RelationEQ)
	if err != nil {
		panic(err)
	}
	return v
}

func malformed(token, reason string) error {
	err := zerr.With(ErrMalformedIdentifier, "identifier", token)
	return zerr.With(err, "reason", reason)
}

func splitRelation(s string) (Relation, string) {
	for _, p := range relationPrefixes {
		if strings.HasPrefix(s, p.token) {
			return p.rel, s[len(p.token):]
		}
	}
	return RelationNone, s
}

// splitLegacyName splits "name-1.2" at the first dash followed by a digit.
func splitLegacyName(s string) (string, string) {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '-' && isDigit(s[i+1]) {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

// splitRevision splits "1.2-r3" into "1.2" and 3.
func splitRevision(version string) (string, int) {
	idx := strings.LastIndex(version, "-r")
	if idx < 0 {
		return version, 0
	}
	rev, err := strconv.Atoi(version[idx+2:])
	if err != nil || rev < 0 {
		return version, 0
	}
	return version[:idx], rev
}

// Key returns the version-independent identity "vendor:library:name".
func (v VLNV) Key() string {
	return v.Vendor + ":" + v.Library + ":" + v.Name
}

// FullVersion returns the version including a non-zero revision suffix.
func (v VLNV) FullVersion() string {
	if v.Revision > 0 {
		return v.Version + "-r" + strconv.Itoa(v.Revision)
	}
	return v.Version
}

// String returns the canonical "vendor:library:name:version[-rN]" form
// without relation.
func (v VLNV) String() string {
	return v.Key() + ":" + v.FullVersion()
}

// Depend returns the dependency form of the VLNV, with its relation prefix.
func (v VLNV) Depend() string {
	return string(v.Relation) + v.String()
}

// WithRelation returns a copy of v carrying rel.
func (v VLNV) WithRelation(rel Relation) VLNV {
	v.Relation = rel
	return v
}

// Sanitized returns a token suitable for file names and solver variables:
// every non-alphanumeric character becomes '_' and leading '_' are dropped.
func (v VLNV) Sanitized() string {
	return Sanitize(v.String())
}

// Sanitize replaces every non-alphanumeric ASCII character of s with '_'
// and strips leading underscores.
func Sanitize(s string) string {
	b := []byte(s)
	for i, c := range b {
		if !isAlnum(c) {
			b[i] = '_'
		}
	}
	return strings.TrimLeft(string(b), "_")
}

// Compare orders VLNVs by vendor, library and name, then by version using
// numeric-aware segment comparison, then by revision. It returns -1, 0 or +1.
func Compare(a, b VLNV) int {
	if c := strings.Compare(a.Vendor, b.Vendor); c != 0 {
		return c
	}
	if c := strings.Compare(a.Library, b.Library); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := CompareVersions(a.Version, b.Version); c != 0 {
		return c
	}
	return cmp.Compare(a.Revision, b.Revision)
}

// Matches reports whether the concrete VLNV candidate satisfies the
// constraint v. Identities must be equal.
func (v VLNV) Matches(candidate VLNV) bool {
	if v.Key() != candidate.Key() {
		return false
	}
	for _, c := range v.ExpandRange() {
		if !c.matchVersion(candidate) {
			return false
		}
	}
	return true
}

func (v VLNV) matchVersion(candidate VLNV) bool {
	full := CompareVersions(candidate.Version, v.Version)
	if full == 0 {
		full = cmp.Compare(candidate.Revision, v.Revision)
	}

	switch v.Relation {
	case RelationGE:
		return full >= 0
	case RelationLE:
		return full <= 0
	case RelationGT:
		return full > 0
	case RelationLT:
		return full < 0
	default:
		if CompareVersions(candidate.Version, v.Version) != 0 {
			return false
		}
		return v.Revision == 0 || candidate.Revision == v.Revision
	}
}

// ExpandRange turns "~" and "^" constraints into an inclusive lower bound and
// an exclusive upper bound. Other relations are returned unchanged.
//
//	~1.2.3 -> >=1.2.3 <1.3
//	^1.2.3 -> >=1.2.3 <2
//	^0.2.3 -> >=0.2.3 <0.3
func (v VLNV) ExpandRange() []VLNV {
	if v.Relation != RelationTilde && v.Relation != RelationCaret {
		return []VLNV{v}
	}
	upper, ok := bumpVersion(v.Version, v.Relation)
	if !ok {
		return []VLNV{v.WithRelation(RelationEQ)}
	}
	lo := v.WithRelation(RelationGE)
	hi := v.WithRelation(RelationLT)
	hi.Version = upper
	hi.Revision = 0
	return []VLNV{lo, hi}
}

// bumpVersion computes the exclusive upper bound for a range operator.
func bumpVersion(version string, rel Relation) (string, bool) {
	segs := strings.Split(version, ".")

	idx := 0
	switch rel {
	case RelationTilde:
		if len(segs) > 1 {
			idx = 1
		}
	case RelationCaret:
		idx = len(segs) - 1
		for i, s := range segs {
			n, err := strconv.Atoi(s)
			if err != nil {
				return "", false
			}
			if n != 0 {
				idx = i
				break
			}
		}
	default:
		return "", false
	}

	n, err := strconv.Atoi(segs[idx])
	if err != nil {
		return "", false
	}
	out := append([]string(nil), segs[:idx]...)
	out = append(out, strconv.Itoa(n+1))
	return strings.Join(out, "."), true
}

// CompareVersions compares two version strings segment by segment. Segments
// are separated by '.', missing segments compare as "0". Within a segment,
// runs of digits compare numerically and other runs compare lexically.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := range max(len(as), len(bs)) {
		x, y := "0", "0"
		if i < len(as) {
			x = as[i]
		}
		if i < len(bs) {
			y = bs[i]
		}
		if c := compareSegment(x, y); c != 0 {
			return c
		}
	}
	return 0
}

func compareSegment(a, b string) int {
	for a != "" && b != "" {
		ra, restA := nextRun(a)
		rb, restB := nextRun(b)
		var c int
		if isDigit(ra[0]) && isDigit(rb[0]) {
			c = compareNumeric(ra, rb)
		} else {
			c = strings.Compare(ra, rb)
		}
		if c != 0 {
			return c
		}
		a, b = restA, restB
	}
	return cmp.Compare(len(a), len(b))
}

func nextRun(s string) (string, string) {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i], s[i:]
}

func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return cmp.Compare(len(a), len(b))
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
