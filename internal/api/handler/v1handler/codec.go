package v1handler

import (
	"strings"

	"phishguard/pkg/domain"
	"phishguard/pkg/serrors"
	"phishguard/pkg/urlnorm"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// decodeFields reads a flat JSON object of string fields into dst. Fields
// not in dst are skipped; null leaves the field empty.
func decodeFields(b []byte, dst map[string]*string) error {
	if err := jx.DecodeBytes(b).ObjBytes(func(d *jx.Decoder, key []byte) error {
		p, ok := dst[string(key)]
		if !ok {
			return d.Skip()
		}
		switch d.Next() {
		case jx.Null:
			return d.Null()
		case jx.String:
			s, err := d.Str()
			if err != nil {
				return errors.Wrapf(err, "field %q", key)
			}
			*p = s

			return nil
		default:
			return errors.Errorf("field %q must be a string", key)
		}
	}); err != nil {
		return serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body")
	}

	return nil
}

func decodeURLRequest(b []byte) (string, error) {
	var u string
	if err := decodeFields(b, map[string]*string{"url": &u}); err != nil {
		return "", err
	}
	if strings.TrimSpace(u) == "" {
		return "", serrors.With(serrors.ErrBadRequest, "url is required")
	}

	return u, nil
}

func decodeContentRequest(b []byte) (location, html string, err error) {
	if err := decodeFields(b, map[string]*string{"location": &location, "html": &html}); err != nil {
		return "", "", err
	}

	return location, html, nil
}

// encodeVerdict writes the verdict of URL as a JSON object.
func encodeVerdict(e *jx.Encoder, URL string, v domain.Verdict) {
	e.FieldStart("url")
	e.Str(URL)
	if d, err := urlnorm.Domain(URL); err == nil {
		e.FieldStart("domain")
		e.Str(string(d))
	}
	e.FieldStart("kind")
	e.Str(string(v.Kind))
	e.FieldStart("label")
	e.Str(v.Label)
	e.FieldStart("phishing")
	e.Bool(v.IsPhishing())
	e.FieldStart("confidence")
	e.Float64(v.Confidence)
	e.FieldStart("phishingProbability")
	e.Float64(v.PhishingProbability())
	if v.IsError() {
		e.FieldStart("error")
		e.ObjStart()
		e.FieldStart("code")
		if k := v.ErrorKind(); k != nil {
			e.Str(k.Error())
		} else {
			e.Str(serrors.ErrInternal.Error())
		}
		e.FieldStart("message")
		e.Str(v.Reason())
		e.ObjEnd()
	}
}

func encodeResult(res *domain.ScanResult) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("surfaceId")
	e.Str(res.Target.SurfaceID)
	e.FieldStart("surface")
	e.Str(string(res.Target.Surface))
	encodeVerdict(&e, res.Target.URL, res.Verdict)
	e.ObjEnd()

	return e.Bytes()
}
