package table

import "strconv"

// Collision beschreibt eine Quellspalte, deren normalisierter Name schon vergeben war.
type Collision struct {
	Source  string
	Target  string
	Renamed string
}

// NormalizeColumns wendet fn auf alle Spaltennamen an. Ergibt fn einen bereits
// vergebenen Namen, wird ein Suffix _2, _3, ... angehängt.
func (t *Table) NormalizeColumns(fn func(string) string) []Collision {
	var collisions []Collision
	used := make(map[string]int, len(t.Columns))

	t.RenameColumns(func(name string) string {
		target := fn(name)
		if _, taken := used[target]; !taken {
			used[target] = 1
			return target
		}

		renamed := target
		for n := used[target] + 1; ; n++ {
			renamed = target + "_" + strconv.Itoa(n)
			if _, taken := used[renamed]; !taken {
				used[target] = n
				break
			}
		}
		used[renamed] = 1
		collisions = append(collisions, Collision{Source: name, Target: target, Renamed: renamed})
		return renamed
	})

	return collisions
}
