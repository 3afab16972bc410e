package typedvalue

import "github.com/metarpc/metarpc/wirebin"

func (c ColumnMetaData) EncodeBinary(w *wirebin.Writer) {
	w.AddInt32(c.Ordinal)
	w.AddString(c.Name)
	w.AddString(c.Label)
	w.AddInt32(int32(c.Type))
	w.AddInt32(c.Precision)
	w.AddInt32(c.Scale)
	w.AddBool(c.Nullable)
	w.AddBool(c.Signed)
	w.AddInt32(int32(c.ArrayElemType))
}

func DecodeColumnMetaDataBinary(r *wirebin.Reader) (ColumnMetaData, error) {
	var c ColumnMetaData
	var err error
	if c.Ordinal, err = r.GetInt32(); err != nil {
		return c, err
	}
	if c.Name, err = r.GetString(); err != nil {
		return c, err
	}
	if c.Label, err = r.GetString(); err != nil {
		return c, err
	}
	t, err := r.GetInt32()
	if err != nil {
		return c, err
	}
	c.Type = SQLType(t)
	if c.Precision, err = r.GetInt32(); err != nil {
		return c, err
	}
	if c.Scale, err = r.GetInt32(); err != nil {
		return c, err
	}
	if c.Nullable, err = r.GetBool(); err != nil {
		return c, err
	}
	if c.Signed, err = r.GetBool(); err != nil {
		return c, err
	}
	elem, err := r.GetInt32()
	if err != nil {
		return c, err
	}
	c.ArrayElemType = SQLType(elem)
	return c, nil
}

func (p ParamMetaData) EncodeBinary(w *wirebin.Writer) {
	w.AddInt32(p.Ordinal)
	w.AddString(p.Name)
	w.AddInt32(int32(p.Type))
	w.AddInt32(p.Precision)
	w.AddInt32(p.Scale)
	w.AddBool(p.Nullable)
	w.AddBool(p.Signed)
}

func DecodeParamMetaDataBinary(r *wirebin.Reader) (ParamMetaData, error) {
	var p ParamMetaData
	var err error
	if p.Ordinal, err = r.GetInt32(); err != nil {
		return p, err
	}
	if p.Name, err = r.GetString(); err != nil {
		return p, err
	}
	t, err := r.GetInt32()
	if err != nil {
		return p, err
	}
	p.Type = SQLType(t)
	if p.Precision, err = r.GetInt32(); err != nil {
		return p, err
	}
	if p.Scale, err = r.GetInt32(); err != nil {
		return p, err
	}
	if p.Nullable, err = r.GetBool(); err != nil {
		return p, err
	}
	if p.Signed, err = r.GetBool(); err != nil {
		return p, err
	}
	return p, nil
}
