package hls

import (
	"container/list"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/streamshift/adrestreamer/internal/types"
	"github.com/streamshift/adrestreamer/utils/errorx"
)

// Unstreamer turns a possibly-master-playlist HLS URL into a continuous
// readable byte stream, grounded on the original HLSUnstreamer: a
// background fetch loop feeds a bounded reader queue; Read drains readers
// front-first and is non-blocking, so a zero-byte, nil-error result is a
// valid "no data yet" response rather than EOF.
type Unstreamer struct {
	dataRx  chan io.ReadCloser
	errorRx chan error

	readers    *list.List
	dataClosed bool
	errClosed  bool
}

// Open fetches source, resolves it to a media playlist URL (following a
// master playlist's highest-bandwidth non-I-frame variant if present), and
// starts the background fetch loop.
func Open(source string, stop <-chan struct{}) (*Unstreamer, error) {
	client := &http.Client{Timeout: types.AppHttpTimeout}

	body, contentType, err := fetchBody(client, source)
	if err != nil {
		return nil, err
	}
	if contentType != types.HLSMimeType {
		return nil, errors.Errorf("hls: invalid content type %q", contentType)
	}

	mediaURL := source
	if master, err := ParseMasterPlaylist(body); err == nil {
		if best, ok := master.BestMediaPlaylistURL(); ok {
			mediaURL = resolveURL(source, best)
		}
	}

	u := &Unstreamer{
		dataRx:  make(chan io.ReadCloser, 10),
		errorRx: make(chan error, 1),
		readers: list.New(),
	}

	errorx.Go(func() {
		u.fetchLoop(client, mediaURL, stop)
	})

	return u, nil
}

func (u *Unstreamer) fetchLoop(client *http.Client, mediaURL string, stop <-chan struct{}) {
	defer close(u.dataRx)

	var lastFetched uint64
	fetchedAny := false

	for {
		select {
		case <-stop:
			return
		default:
		}

		body, contentType, err := fetchBody(client, mediaURL)
		if err != nil {
			u.errorRx <- err
			return
		}
		if contentType != types.HLSMimeType {
			u.errorRx <- errors.Errorf("hls: invalid content type %q", contentType)
			return
		}

		playlist, err := ParseMediaPlaylist(body)
		if err != nil {
			u.errorRx <- err
			return
		}

		for _, seg := range playlist.Segments {
			if fetchedAny && seg.SequenceNumber <= lastFetched {
				continue
			}

			select {
			case <-stop:
				return
			default:
			}

			resp, err := client.Get(resolveURL(mediaURL, seg.URI))
			if err != nil {
				u.errorRx <- errors.Wrapf(err, "hls: fetch segment #%d", seg.SequenceNumber)
				return
			}
			lastFetched = seg.SequenceNumber
			fetchedAny = true
			u.dataRx <- resp.Body
		}

		sleep := playlist.TargetDuration / 2
		if sleep <= 0 {
			sleep = 1
		}
		select {
		case <-stop:
			return
		case <-time.After(time.Duration(sleep * float64(time.Second))):
		}
	}
}

// Read implements io.Reader. It drains the front reader first, checks for a
// fatal background error, pulls one newly arrived reader if available, then
// drains again — all without blocking. A (0, nil) result means "no data
// ready yet", not end of stream.
func (u *Unstreamer) Read(buf []byte) (int, error) {
	total := 0

	total += u.drainReaders(buf, total)

	if err := u.pollError(); err != nil {
		return total, err
	}

	u.pollOneReader()

	total += u.drainReaders(buf, total)

	return total, nil
}

func (u *Unstreamer) drainReaders(buf []byte, already int) int {
	read := 0
	for u.readers.Len() > 0 {
		if already+read == len(buf) {
			break
		}
		front := u.readers.Front()
		r := front.Value.(io.ReadCloser)
		n, err := r.Read(buf[already+read:])
		read += n
		if n == 0 || err != nil {
			r.Close()
			u.readers.Remove(front)
			if n > 0 {
				break
			}
			continue
		}
		break
	}
	return read
}

func (u *Unstreamer) pollError() error {
	if u.errClosed {
		return nil
	}
	select {
	case err, ok := <-u.errorRx:
		if !ok {
			u.errClosed = true
			return nil
		}
		return err
	default:
		return nil
	}
}

func (u *Unstreamer) pollOneReader() {
	if u.dataClosed {
		return
	}
	select {
	case r, ok := <-u.dataRx:
		if !ok {
			u.dataClosed = true
			return
		}
		u.readers.PushBack(r)
	default:
	}
}

func fetchBody(client *http.Client, target string) (content, contentType string, err error) {
	resp, err := client.Get(target)
	if err != nil {
		return "", "", errors.Wrapf(err, "hls: GET %s", target)
	}
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = ct[:idx]
	}
	ct = strings.TrimSpace(ct)

	buf := new(strings.Builder)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		return "", "", errors.Wrapf(err, "hls: read body of %s", target)
	}
	return buf.String(), ct, nil
}

// resolveURL resolves ref against base, returning ref unchanged if it is
// already absolute or base cannot be parsed.
func resolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if refURL.IsAbs() {
		return ref
	}
	resolved := baseURL.ResolveReference(refURL)
	resolved.Path = path.Clean(resolved.Path)
	return resolved.String()
}
