package blog

import (
	"fmt"
	"time"
)

var months = [...]string{
	"xaneiro", "febreiro", "marzo", "abril", "maio", "xuño",
	"xullo", "agosto", "setembro", "outubro", "novembro", "decembro",
}

// FormatDate renders t as "5 de xaneiro de 2024".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), months[t.Month()-1], t.Year())
}
