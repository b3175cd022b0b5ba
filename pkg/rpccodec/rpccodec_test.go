package rpccodec

import (
	"testing"

	"google.golang.org/grpc/encoding"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCodec_MarshalUnmarshal(t *testing.T) {
	c := Codec{}

	in := sample{Name: "mean", Count: 3}
	data, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var out sample
	if err := c.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out != in {
		t.Errorf("Unmarshal() = %+v, want %+v", out, in)
	}
}

func TestCodec_Name(t *testing.T) {
	c := Codec{}
	if c.Name() != Name {
		t.Errorf("Name() = %q, want %q", c.Name(), Name)
	}
	if Name != "json" {
		t.Errorf("Name = %q, want %q", Name, "json")
	}
}

func TestCodec_RegisteredWithGRPC(t *testing.T) {
	registered := encoding.GetCodec(Name)
	if registered == nil {
		t.Fatal("codec should be registered under Name via init()")
	}
	if _, ok := registered.(Codec); !ok {
		t.Errorf("registered codec type = %T, want Codec", registered)
	}
}
