package csvimport

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const priceHeader = "product_type,quantity,price,design_fee,design_fee_included,specifications,delivery_days\n"

func processPrice(t *testing.T, body string) Outcome {
	t.Helper()
	records, err := ReadCSV(strings.NewReader(priceHeader + body))
	require.NoError(t, err)
	out, err := PriceTable.Process(records)
	require.NoError(t, err)
	return out
}

func TestPriceTable_EmptyProductType(t *testing.T) {
	out := processPrice(t, ",10,100,0,true,,5\n")
	require.Len(t, out.Invalid, 1)
	assert.Empty(t, out.Valid)
	assert.Equal(t, 1, out.Invalid[0].Index)
	assert.Equal(t, "商品種類が空です", out.Invalid[0].Reason)
}

func TestPriceTable_ValidRow(t *testing.T) {
	out := processPrice(t, "名刺,100,2500,4500,false,,10\n")
	require.Empty(t, out.Invalid)
	require.Len(t, out.Valid, 1)

	items := PriceItems(out.Valid)
	require.Len(t, items, 1)
	assert.Equal(t, "名刺", items[0].ProductType)
	assert.Equal(t, 100, items[0].Quantity)
	assert.Equal(t, int64(2500), items[0].Price)
	assert.Equal(t, int64(4500), items[0].DesignFee)
	assert.False(t, items[0].DesignFeeIncluded)
	assert.JSONEq(t, "{}", string(items[0].Specifications))
	assert.Equal(t, 10, items[0].DeliveryDays)
}

func TestPriceTable_PartialFailure(t *testing.T) {
	body := strings.Join([]string{
		"名刺,100,2500,4500,false,,10",
		"診察券,abc,3000,0,TRUE,,7",
		"",
		"リーフレット,500,12000,8000,yes,,14",
		`封筒,1000,"15,000",0,False,"{""size"":""長3""}",10`,
	}, "\n") + "\n"
	out := processPrice(t, body)

	require.Len(t, out.Valid, 2)
	assert.Equal(t, 1, out.Valid[0].Index)
	assert.Equal(t, 5, out.Valid[1].Index)
	assert.Equal(t, int64(15000), out.Valid[1].Int64("price"))
	assert.JSONEq(t, `{"size":"長3"}`, string(out.Valid[1].JSON("specifications")))

	require.Len(t, out.Invalid, 2)
	assert.Equal(t, RowError{Index: 2, Reason: "数量が数値ではありません"}, out.Invalid[0])
	assert.Equal(t, 4, out.Invalid[1].Index)
	assert.Contains(t, out.Invalid[1].Reason, "デザイン料込み")
	assert.Equal(t, []string{"2行目: 数量が数値ではありません", out.Invalid[1].Error()}, out.Messages())
}

func TestProcess_BlankLinesKeepFilePositions(t *testing.T) {
	rows := [][]any{
		{"product_type", "quantity", "price", "design_fee", "design_fee_included", "specifications", "delivery_days"},
		{"名刺", 100, 2500, 4500, "false", "", 10},
		nil,
		{"", 100, 2500, 4500, "false", "", 10},
	}

	csvOut := processPrice(t, "名刺,100,2500,4500,false,,10\n\n,100,2500,4500,false,,10\n")

	f := excelize.NewFile()
	for i, row := range rows {
		if row == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	records, err := ReadFile("prices.xlsx", buf)
	require.NoError(t, err)
	xlsxOut, err := PriceTable.Process(records)
	require.NoError(t, err)

	for name, out := range map[string]Outcome{"csv": csvOut, "xlsx": xlsxOut} {
		require.Len(t, out.Valid, 1, name)
		assert.Equal(t, 1, out.Valid[0].Index, name)
		assert.Equal(t, []string{"3行目: 商品種類が空です"}, out.Messages(), name)
	}
}

func TestReadCSV_LeadingBlankLinesAndQuotedNewlines(t *testing.T) {
	records, err := ReadCSV(strings.NewReader("\n" + priceHeader + "\"名刺\n両面\",100,2500,4500,false,,10\n\n,1,1,1,true,,1\n"))
	require.NoError(t, err)
	out, err := PriceTable.Process(records)
	require.NoError(t, err)
	require.Len(t, out.Valid, 1)
	assert.Equal(t, "名刺\n両面", out.Valid[0].Text("product_type"))
	require.Len(t, out.Invalid, 1)
	assert.Equal(t, 3, out.Invalid[0].Index)
}

func TestPriceTable_RejectsNumbersTooLarge(t *testing.T) {
	out := processPrice(t, "名刺,100,1e30,0,false,,10\n名刺,100,-9007199254740994,0,false,,10\n名刺,100,9007199254740992,0,false,,10\n")
	require.Len(t, out.Invalid, 2)
	assert.Equal(t, RowError{Index: 1, Reason: "価格が大きすぎます"}, out.Invalid[0])
	assert.Equal(t, 2, out.Invalid[1].Index)
	require.Len(t, out.Valid, 1)
	assert.Equal(t, int64(MaxNumber), PriceItems(out.Valid)[0].Price)
}

func TestPriceTable_SpecificationsMustBeObject(t *testing.T) {
	out := processPrice(t, "a,1,1,1,true,[1],1\nb,1,1,1,true,\"\"\"x\"\"\",1\nc,1,1,1,true,42,1\nd,1,1,1,true,\" {\"\"k\"\":1}\",1\n")
	require.Len(t, out.Valid, 4)
	for _, row := range out.Valid[:3] {
		assert.Equal(t, json.RawMessage("{}"), row.JSON("specifications"), row.Text("product_type"))
	}
	assert.JSONEq(t, `{"k":1}`, string(out.Valid[3].JSON("specifications")))
}

func TestPriceTable_BooleanIsCaseInsensitive(t *testing.T) {
	out := processPrice(t, "a,1,1,1,TRUE,,1\nb,1,1,1,False,,1\nc,1,1,1,1,,1\n")
	require.Len(t, out.Valid, 2)
	assert.True(t, out.Valid[0].Bool("design_fee_included"))
	assert.False(t, out.Valid[1].Bool("design_fee_included"))
	require.Len(t, out.Invalid, 1)
	assert.Equal(t, 3, out.Invalid[0].Index)
}

func TestPriceTable_InvalidSpecificationsDefaultToEmptyObject(t *testing.T) {
	out := processPrice(t, "a,1,1,1,true,{not json,1\n")
	require.Len(t, out.Valid, 1)
	assert.Equal(t, json.RawMessage("{}"), out.Valid[0].JSON("specifications"))
}

func TestPriceTable_MultipleReasonsAreJoined(t *testing.T) {
	out := processPrice(t, ",x,1,1,true,,1\n")
	require.Len(t, out.Invalid, 1)
	assert.Equal(t, "商品種類が空です、数量が数値ではありません", out.Invalid[0].Reason)
}

func TestProcess_MissingRequiredColumnAbortsImport(t *testing.T) {
	records, err := ReadCSV(strings.NewReader("product_type,quantity\n名刺,100\n"))
	require.NoError(t, err)
	_, err = PriceTable.Process(records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")
}

func TestProcess_HeaderOnlyIsEmpty(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(priceHeader))
	require.NoError(t, err)
	_, err = PriceTable.Process(records)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestReadCSV_MalformedQuotingAborts(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(priceHeader + "\"名刺,100,2500\n"))
	assert.Error(t, err)
}

func TestReadCSV_EmptyInput(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestReadCSV_ShiftJISAndBOM(t *testing.T) {
	text := "商品種類,数量,価格,デザイン料,デザイン料込み,仕様,納期日数\n名刺,１００,2500,4500,false,,10\n"
	sjis, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(text))
	require.NoError(t, err)

	for name, data := range map[string][]byte{
		"shift_jis": sjis,
		"utf8 bom":  append([]byte{0xEF, 0xBB, 0xBF}, []byte(text)...),
	} {
		t.Run(name, func(t *testing.T) {
			records, err := ReadCSV(bytes.NewReader(data))
			require.NoError(t, err)
			out, err := PriceTable.Process(records)
			require.NoError(t, err)
			require.Len(t, out.Valid, 1)
			assert.Equal(t, "名刺", out.Valid[0].Text("product_type"))
			assert.Equal(t, 100, out.Valid[0].Int("quantity"))
		})
	}
}

func TestReadFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"year_month", "insurance_revenue", "self_pay_revenue"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"2024/4", 3000000, 2000000}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	records, err := ReadFile("april.xlsx", buf)
	require.NoError(t, err)
	out, err := MonthlyData.Process(records)
	require.NoError(t, err)
	require.Len(t, out.Valid, 1)

	rows := MonthlyRecords(out.Valid)
	assert.Equal(t, "2024-04", rows[0].YearMonth)
	assert.Equal(t, int64(3000000), rows[0].InsuranceRevenue)
	assert.Equal(t, int64(2000000), rows[0].SelfPayRevenue)
	assert.Zero(t, rows[0].RetailRevenue)
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	_, err := ReadFile("data.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestMonthlyData_Validation(t *testing.T) {
	csvText := "年月,保険診療収入,自費診療収入,物販収入,新患数\n" +
		"2024-04,\"3,000,000\",2000000,0,25\n" +
		"2024-13,1,1,,\n" +
		"2024-05,,1,,\n" +
		"2024-06,1,1,NaN,\n"
	records, err := ReadCSV(strings.NewReader(csvText))
	require.NoError(t, err)
	out, err := MonthlyData.Process(records)
	require.NoError(t, err)

	require.Len(t, out.Valid, 1)
	assert.Equal(t, int64(3000000), out.Valid[0].Int64("insurance_revenue"))
	assert.Equal(t, 25, out.Valid[0].Int("new_patients"))

	require.Len(t, out.Invalid, 3)
	assert.Equal(t, "年月はYYYY-MM形式で入力してください", out.Invalid[0].Reason)
	assert.Equal(t, "保険診療収入が空です", out.Invalid[1].Reason)
	assert.Equal(t, "物販収入が数値ではありません", out.Invalid[2].Reason)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"100", 100, true},
		{"1,234,567", 1234567, true},
		{"１２３", 123, true},
		{"¥2,500", 2500, true},
		{"-3.5", -3.5, true},
		{"", 0, false},
		{"abc", 0, false},
		{"Inf", 0, false},
		{"NaN", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestParseYearMonth(t *testing.T) {
	for in, want := range map[string]string{"2024-04": "2024-04", "2024/4": "2024-04", "２０２４－０４": "2024-04"} {
		got, ok := ParseYearMonth(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"2024", "24-04", "2024-00", "2024-1-1", "april"} {
		_, ok := ParseYearMonth(bad)
		assert.False(t, ok, bad)
	}
}
