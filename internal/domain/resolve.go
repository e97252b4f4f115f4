package domain

// NameResolver maps a free-text municipality name to its identifier.
type NameResolver interface {
	ResolveByName(name string) (string, bool)
}

// Resolution records how a row's identifier was obtained.
type Resolution string

const (
	ResolvedByCode Resolution = "code"
	ResolvedByName Resolution = "name"
	Unresolved     Resolution = "unresolved"
)

// ResolveIdentifier derives a row's identifier from its code, falling back
// to the name when the code is missing. A nil resolver disables the
// fallback. Whether the identifier exists in the fact table is checked by the
// caller.
func ResolveIdentifier(code, name string, resolver NameResolver) (string, Resolution) {
	if id := NormalizeCode(code); id != "" {
		return id, ResolvedByCode
	}
	if resolver == nil || name == "" {
		return "", Unresolved
	}
	if id, ok := resolver.ResolveByName(name); ok {
		return id, ResolvedByName
	}
	return "", Unresolved
}
