package feed

// SelectorKind enumerates the closed set of feed variants.
type SelectorKind int

const (
	// KindGlobal selects every post.
	KindGlobal SelectorKind = iota
	// KindGroup selects posts filed under one group, resolved by slug.
	KindGroup
	// KindAuthor selects posts by one author, resolved by username.
	KindAuthor
	// KindFollowing selects posts by the authors the viewer follows.
	KindFollowing
)

// Selector describes which filter a feed applies. Construct one with
// Global, ByGroup, ByAuthor or Following; the zero value is the global feed.
type Selector struct {
	Kind     SelectorKind
	Slug     string
	Username string
}

// Global selects all posts, newest first.
func Global() Selector {
	return Selector{Kind: KindGlobal}
}

// ByGroup selects posts whose group matches slug.
func ByGroup(slug string) Selector {
	return Selector{Kind: KindGroup, Slug: slug}
}

// ByAuthor selects posts authored by the named user.
func ByAuthor(username string) Selector {
	return Selector{Kind: KindAuthor, Username: username}
}

// Following selects posts by authors the viewer follows. Requires an
// authenticated viewer.
func Following() Selector {
	return Selector{Kind: KindFollowing}
}
