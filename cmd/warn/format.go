package main

import "fmt"

// byteSize renders n with a binary unit, e.g. "1.5 KiB".
func byteSize(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit && exp < 3; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}

// shortenURL keeps the tail of url, which names the page, within width
// characters.
func shortenURL(url string, width int) string {
	switch {
	case len(url) <= width:
		return url
	case width <= 3:
		return url[:max(width, 0)]
	default:
		return "..." + url[len(url)-(width-3):]
	}
}
