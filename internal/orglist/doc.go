// Package orglist enumerates the repositories of a GitHub organization and
// renders them as clone references consumable by the mirror synchronizer.
package orglist
