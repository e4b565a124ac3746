// Package mirror synchronizes local mirror directories with their remote
// repositories. The synchronizer drives one repository through the
// absent/present lifecycle while the batch driver feeds it references from an
// input file, isolating failures per repository and per branch.
package mirror
