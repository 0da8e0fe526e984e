package filter

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// maxMultipartDepth bounds recursion into nested multipart bodies
const maxMultipartDepth = 5

// extractTextFromMessage returns the text/plain content of an email message,
// walking nested multipart bodies and undoing transfer and charset encodings.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return "", err
	}
	header := textproto.MIMEHeader(msg.Header)

	var text bytes.Buffer
	if extractPart(header, body, &text, 0) {
		return text.String(), nil
	}
	if text.Len() == 0 && isMultipart(header.Get("Content-Type")) {
		return "", nil
	}
	return string(body), nil
}

// extractPart appends decoded text/plain content to out and reports whether
// the part was understood.
func extractPart(header textproto.MIMEHeader, body []byte, out *bytes.Buffer, depth int) bool {
	mediaType, params, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil {
		// No usable Content-Type, treat as plain text
		mediaType, params = "text/plain", map[string]string{}
	}

	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		boundary, ok := params["boundary"]
		if !ok || depth >= maxMultipartDepth {
			return false
		}
		mr := multipart.NewReader(bytes.NewReader(body), boundary)
		found := false
		for {
			part, err := mr.NextPart()
			if err != nil {
				// io.EOF or a truncated body; keep what was read
				return found
			}
			partBody, err := io.ReadAll(part)
			if err != nil {
				continue // Skip this part if we can't read it
			}
			if extractPart(part.Header, partBody, out, depth+1) {
				found = true
			}
		}
	case mediaType == "text/plain":
		decoded := decodeTransfer(header.Get("Content-Transfer-Encoding"), body)
		out.WriteString(decodeCharset(params["charset"], decoded))
		out.WriteString("\n")
		return true
	default:
		// Skip other parts (attachments, html, etc.)
		return false
	}
}

func isMultipart(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "multipart/")
}

// decodeTransfer undoes base64 and quoted-printable encodings
func decodeTransfer(encoding string, body []byte) []byte {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		decoded, err := io.ReadAll(base64.NewDecoder(base64.StdEncoding, newlineStripper(body)))
		if err != nil {
			return body
		}
		return decoded
	case "quoted-printable":
		decoded, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(body)))
		if err != nil {
			return body
		}
		return decoded
	default:
		return body
	}
}

func newlineStripper(body []byte) io.Reader {
	clean := bytes.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, body)
	return bytes.NewReader(clean)
}

// decodeCharset converts body from charset to UTF-8, leaving it untouched
// for UTF-8, ASCII or unknown charsets.
func decodeCharset(charset string, body []byte) string {
	charset = strings.ToLower(strings.TrimSpace(charset))
	if charset == "" || charset == "utf-8" || charset == "us-ascii" {
		return string(body)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

// decodeEncodedHeader decodes RFC 2047 encoded words in a header value
func decodeEncodedHeader(value string) (string, error) {
	dec := &mime.WordDecoder{
		CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
			enc, err := htmlindex.Get(charset)
			if err != nil {
				return nil, err
			}
			return enc.NewDecoder().Reader(input), nil
		},
	}
	return dec.DecodeHeader(value)
}
