package identity

import "sort"

// UserList is an unordered set of UserIDs. The zero value is an empty,
// usable set.
//
// UserList is implemented as a map for O(1) membership and insertion;
// callers should not rely on iteration order (use Slice for a stable,
// sorted view).
type UserList map[UserID]struct{}

// NewUserList builds a UserList from the given users, deduplicating.
func NewUserList(users ...UserID) UserList {
	ul := make(UserList, len(users))
	for _, u := range users {
		ul.Insert(u)
	}

	return ul
}

// Insert adds a user to the set. Inserting an existing member is a no-op.
func (ul UserList) Insert(user UserID) {
	ul[user] = struct{}{}
}

// Contains reports whether user is a member of the set.
func (ul UserList) Contains(user UserID) bool {
	_, ok := ul[user]

	return ok
}

// Len returns the number of distinct users in the set.
func (ul UserList) Len() int {
	return len(ul)
}

// Equal reports whether ul and other contain exactly the same users.
func (ul UserList) Equal(other UserList) bool {
	if len(ul) != len(other) {
		return false
	}

	for u := range ul {
		if !other.Contains(u) {
			return false
		}
	}

	return true
}

// Slice returns the set's members as a sorted slice, for deterministic
// iteration (logging, serialization, test assertions).
func (ul UserList) Slice() []UserID {
	out := make([]UserID, 0, len(ul))
	for u := range ul {
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Clone returns an independent copy of the set.
func (ul UserList) Clone() UserList {
	out := make(UserList, len(ul))
	for u := range ul {
		out[u] = struct{}{}
	}

	return out
}

// UnionUserLists returns the union of zero or more UserLists without
// mutating any of them.
func UnionUserLists(lists ...UserList) UserList {
	out := make(UserList)

	for _, list := range lists {
		for u := range list {
			out.Insert(u)
		}
	}

	return out
}
