package nl2sql

import (
	"fmt"
	"strings"
)

// Example is a few-shot question/SQL pair embedded in every prompt.
type Example struct {
	Question string
	SQL      string
}

// Dialect fixes the SQL flavour the model is asked to produce. The examples are
// part of the model contract: editing them changes what the model generates.
type Dialect struct {
	Name         string
	SystemPrompt string
	Examples     []Example
}

var MySQL = Dialect{
	Name: "mysql",
	SystemPrompt: `Eres un experto en SQL especializado en generar consultas precisas EXCLUSIVAMENTE para MySQL 8.0.
RESTRICCIONES CRÍTICAS:
- NUNCA uses PERCENTILE_CONT, PERCENTILE_DISC ni WITHIN GROUP - estas funciones NO existen en MySQL 8.0
- NUNCA uses características específicas de PostgreSQL o SQL Server
- Para percentiles o distribuciones, usa ORDER BY con LIMIT o variables de usuario
- Las CTEs (WITH) están disponibles en MySQL 8.0, pero úsalas con sintaxis compatible

Dado el esquema de la base de datos:
1. Verifica SIEMPRE que cada función y sintaxis que uses sea 100% compatible con MySQL 8.0
2. Para agrupaciones por percentiles, usa subconsultas y aproximaciones con NTILE() o posiciones relativas
3. Analiza cuidadosamente la pregunta para entender los marcos temporales, condiciones y métricas
4. Presta especial atención a consultas temporales y usa funciones de fecha MySQL compatibles
5. Retorna únicamente la consulta SQL ejecutable sin explicaciones ni comentarios`,
	Examples: []Example{
		{Question: "¿Cuántos usuarios tenemos en total?", SQL: "SELECT COUNT(*) FROM users;"},
		{Question: "¿Cuántos pedidos tenemos programados para mañana?", SQL: "SELECT COUNT(*) FROM orders WHERE delivery_date = CURDATE() + INTERVAL 1 DAY;"},
		{Question: "¿Cuántos formularios de contacto no han sido respondidos?", SQL: "SELECT COUNT(*) FROM contact_forms WHERE is_responded = 0;"},
		{Question: "¿Cuántos pedidos se entregaron en los últimos 7 días?", SQL: "SELECT COUNT(*) FROM orders WHERE status = 'completed' AND delivery_date BETWEEN CURDATE() - INTERVAL 7 DAY AND CURDATE();"},
		{Question: "¿Cuántos ingresos generamos el último trimestre?", SQL: "SELECT SUM(total_amount) FROM orders WHERE created_at BETWEEN DATE_SUB(CURDATE(), INTERVAL 3 MONTH) AND CURDATE();"},
		{Question: "¿Quién es el usuario que más pedidos ha realizado?", SQL: "SELECT users.name, COUNT(orders.id) as order_count FROM users JOIN orders ON users.id = orders.user_id GROUP BY users.id ORDER BY order_count DESC LIMIT 1;"},
	},
}

var Postgres = Dialect{
	Name: "postgres",
	SystemPrompt: `Eres un experto en SQL especializado en generar consultas precisas EXCLUSIVAMENTE para PostgreSQL 16.
RESTRICCIONES CRÍTICAS:
- NUNCA uses características específicas de MySQL o SQL Server (CURDATE(), DATE_SUB, backticks, LIMIT con coma)
- Los booleanos se comparan con true/false, nunca con 0/1
- Para percentiles usa percentile_cont/percentile_disc con WITHIN GROUP o NTILE()

Dado el esquema de la base de datos:
1. Verifica SIEMPRE que cada función y sintaxis que uses sea compatible con PostgreSQL 16
2. Toda columna no agregada del SELECT debe aparecer en GROUP BY
3. Analiza cuidadosamente la pregunta para entender los marcos temporales, condiciones y métricas
4. Usa aritmética de fechas de PostgreSQL (CURRENT_DATE, INTERVAL '1 day')
5. Retorna únicamente la consulta SQL ejecutable sin explicaciones ni comentarios`,
	Examples: []Example{
		{Question: "¿Cuántos usuarios tenemos en total?", SQL: "SELECT COUNT(*) FROM users;"},
		{Question: "¿Cuántos pedidos tenemos programados para mañana?", SQL: "SELECT COUNT(*) FROM orders WHERE delivery_date = CURRENT_DATE + 1;"},
		{Question: "¿Cuántos formularios de contacto no han sido respondidos?", SQL: "SELECT COUNT(*) FROM contact_forms WHERE is_responded = false;"},
		{Question: "¿Cuántos pedidos se entregaron en los últimos 7 días?", SQL: "SELECT COUNT(*) FROM orders WHERE status = 'completed' AND delivery_date BETWEEN CURRENT_DATE - 7 AND CURRENT_DATE;"},
		{Question: "¿Cuántos ingresos generamos el último trimestre?", SQL: "SELECT SUM(total_amount) FROM orders WHERE created_at BETWEEN CURRENT_DATE - INTERVAL '3 months' AND CURRENT_DATE;"},
		{Question: "¿Quién es el usuario que más pedidos ha realizado?", SQL: "SELECT users.name, COUNT(orders.id) AS order_count FROM users JOIN orders ON users.id = orders.user_id GROUP BY users.id, users.name ORDER BY order_count DESC LIMIT 1;"},
	},
}

var DuckDB = Dialect{
	Name: "duckdb",
	SystemPrompt: `Eres un experto en SQL especializado en generar consultas precisas EXCLUSIVAMENTE para DuckDB.
RESTRICCIONES CRÍTICAS:
- DuckDB usa una sintaxis parecida a PostgreSQL; NUNCA uses funciones exclusivas de MySQL (CURDATE(), DATE_SUB)
- Los booleanos se comparan con true/false
- Para percentiles usa quantile_cont, quantile_disc o NTILE()

Dado el esquema de la base de datos:
1. Verifica SIEMPRE que cada función y sintaxis que uses exista en DuckDB
2. Analiza cuidadosamente la pregunta para entender los marcos temporales, condiciones y métricas
3. Usa aritmética de fechas de DuckDB (current_date, INTERVAL 1 DAY)
4. Retorna únicamente la consulta SQL ejecutable sin explicaciones ni comentarios`,
	Examples: []Example{
		{Question: "¿Cuántos usuarios tenemos en total?", SQL: "SELECT COUNT(*) FROM users;"},
		{Question: "¿Cuántos pedidos tenemos programados para mañana?", SQL: "SELECT COUNT(*) FROM orders WHERE delivery_date = current_date + INTERVAL 1 DAY;"},
		{Question: "¿Cuántos formularios de contacto no han sido respondidos?", SQL: "SELECT COUNT(*) FROM contact_forms WHERE is_responded = false;"},
		{Question: "¿Cuántos pedidos se entregaron en los últimos 7 días?", SQL: "SELECT COUNT(*) FROM orders WHERE status = 'completed' AND delivery_date BETWEEN current_date - INTERVAL 7 DAY AND current_date;"},
		{Question: "¿Cuántos ingresos generamos el último trimestre?", SQL: "SELECT SUM(total_amount) FROM orders WHERE created_at BETWEEN current_date - INTERVAL 3 MONTH AND current_date;"},
		{Question: "¿Quién es el usuario que más pedidos ha realizado?", SQL: "SELECT users.name, COUNT(orders.id) AS order_count FROM users JOIN orders ON users.id = orders.user_id GROUP BY users.id, users.name ORDER BY order_count DESC LIMIT 1;"},
	},
}

// DialectFor maps a database/sql driver name to its prompt dialect.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "mysql":
		return MySQL, nil
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	case "duckdb":
		return DuckDB, nil
	default:
		return Dialect{}, fmt.Errorf("no prompt dialect for driver %q", driver)
	}
}
