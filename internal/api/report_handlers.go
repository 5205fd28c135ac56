package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"Minex/internal/db"
)

// CommissionsReportHandler формирует Excel-отчет по всем комиссионным
// выплатам и отдает его как вложение.
func CommissionsReportHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := db.GetCommissionsForExcel()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Не удалось получить данные для отчета")
		return
	}
	defer rows.Close()

	f := excelize.NewFile()
	sheetName := "Комиссии"
	index, _ := f.NewSheet(sheetName) // Игнорируем ошибку, если лист уже существует (NewFile создает Sheet1)
	f.DeleteSheet("Sheet1")           // Удаляем стандартный лист / Delete default sheet
	f.SetActiveSheet(index)

	headers := []string{"Получатель Email", "Получатель Имя", "Источник Email", "Сумма", "Процент", "Глубина", "Тип", "Дата"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2
	for rows.Next() {
		var payeeEmail, payeeName, payerEmail, sourceType string
		var amount, percentage float64
		var depth int
		var createdAt time.Time

		// Порядок сканирования должен соответствовать SELECT в db.GetCommissionsForExcel()
		// Scan order must match SELECT in db.GetCommissionsForExcel()
		if errScan := rows.Scan(&payeeEmail, &payeeName, &payerEmail, &amount, &percentage, &depth, &sourceType, &createdAt); errScan != nil {
			log.Printf("CommissionsReportHandler: ошибка сканирования строки комиссии: %v", errScan)
			continue
		}

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), payeeEmail)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), payeeName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), payerEmail)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), amount)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowIndex), percentage)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowIndex), depth)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowIndex), sourceType)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", rowIndex), createdAt.Format("02.01.2006 15:04"))
		rowIndex++
	}
	if err = rows.Err(); err != nil {
		log.Printf("CommissionsReportHandler: ошибка после итерации по комиссиям: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Ошибка при обработке данных отчета")
		return
	}

	fileName := fmt.Sprintf("commissions_report_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
	if err := f.Write(w); err != nil {
		log.Printf("CommissionsReportHandler: ошибка записи Excel в ответ: %v", err)
	}
}
