package crypto

type IdentitySet map[Identity]struct{}

func NewIdentitySet(ids ...Identity) IdentitySet {
	set := make(IdentitySet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

func (set IdentitySet) Add(id Identity) {
	set[id] = struct{}{}
}

func (set IdentitySet) Has(id Identity) bool {
	_, ok := set[id]
	return ok
}
