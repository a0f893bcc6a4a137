package http

import "io"

// progressReader wraps the request body and reports upload progress as a
// percentage of the total byte count while the transport drains it.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report func(percent float64)
}

func newProgressReader(r io.Reader, total int64, report func(percent float64)) *progressReader {
	return &progressReader{r: r, total: total, report: report}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 && p.report != nil {
		p.read += int64(n)
		p.report(float64(p.read) / float64(p.total) * 100)
	}
	return n, err
}
