package ai

import "strings"

// PromptTemplate is the three-part prompt structure: Header + Body + Append.
// Only Body is meant to be modified by business logic; Header and Append
// carry fixed contract text. Vars are replaced on Build.
type PromptTemplate struct {
	Header string
	Body   string
	Append string
	Lang   string
	Vars   map[string]string
}

func (pt *PromptTemplate) Build() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{pt.Header, pt.Body, pt.Append} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	prompt := strings.Join(parts, "\n\n")

	for k, v := range pt.Vars {
		prompt = strings.ReplaceAll(prompt, k, v)
	}
	return prompt
}

func (pt *PromptTemplate) SetBody(body string) {
	pt.Body = body
}

func (pt *PromptTemplate) AppendBody(content string) {
	if pt.Body == "" {
		pt.Body = content
	} else {
		pt.Body += "\n\n" + content
	}
}

func (pt *PromptTemplate) SetVar(key, value string) {
	if pt.Vars == nil {
		pt.Vars = make(map[string]string)
	}
	pt.Vars[key] = value
}

const PROMPT_METADATA_EN = `
*** Role ***: You are a data analyst.
*** Task ***: - You have been provided with a dataset containing tabular project data.
              - Your goal is to read the instructions in the *** Instructions *** section below and extract metadata for each column in the dataset given in the *** Column Names *** section.

*** Column Names ***:
${columns}

*** Instructions ***:
1. For each column in the *** Column Names *** section, provide:
    - A detailed metadata description including the data type.
    - Expected value ranges or categories.
    - Relationships that might be derived from the column (e.g. dependencies, etc.).
2. You can assume that the dataset is clean and well-structured.
3. Your response should be in JSON format following the *** Output Format *** section provided below.

*** Output Format in Json ***:
{
    "metadata": {
        "column_name_1": {
            "data_type": "Data type of the column (e.g., numerical, categorical, etc.)",
            "description": "Detailed description of the column including expected value ranges or categories, etc.",
            "relationships": ["relationship_1", "relationship_2"]
        },
        ...
    }
}
`

const PROMPT_INSIGHT_QUESTIONS_EN = `
*** Role ***: You are a data analyst.
*** Task ***: - You have been provided with a dataset containing metadata for tabular project data.
              - Your goal is to read the instructions in the *** Instructions *** section below and formulate insight sql queries.

*** Metadata ***:
${metadata}

*** Instructions ***:
1. By keeping in mind that these insights will later drive SQL queries:
    - Explore the metadata to surface a broad set of insights.
    - Focus on metrics like counts, percentages, averages, trends, ratios, rankings, growth rates, and distributions.
    - Keep queries clear, focused, and avoid large result sets.
    - Frame each insight as a specific, measurable statement.
2. Include diverse insights: predictive, diagnostic, deviations, profitability, loss, outliers, anomalies, normal patterns, etc.
    - Example 1: Has support ticket volume increased significantly compared to the monthly average, if so, by how much?
    - Example 2: How much has revenue from new users changed compared to last month? Has there been a notable increase or decrease?
3. Your response should follow the *** Output Format *** provided below, providing a numbered list of the insight queries.

*** Output Format List ***:

1. Question 1
2. Question 2
...
`

const PROMPT_TEXT_TO_SQL_EN = `
*** Role ***: You are a SQL query generator.
*** Task ***: - You are provided with metadata for a dataset and a list of insight questions.
              - Your goal is to read the instructions in the *** Instructions *** section below and generate SQL queries to answer the insight questions based on the metadata provided in the *** Metadata *** section and the insight questions in the *** Insight Questions *** section.

*** Metadata ***:
${metadata}
*** Insight Questions ***:
${insight_questions}

*** Instructions ***:
1. For each insight question, generate a SQL query that can be used to answer the question. Keep in mind that we are using SQLite for this task.
2. Use the metadata provided to understand the dataset schema and formulate the SQL queries accordingly.
3. Ensure that SQL queries use valid, standard SQL syntax and functions, optimized for the given insight questions, and avoid unsupported functions like CORRELATION, COVARIANCE, STDEV, RANK(), ROW_NUMBER(), and others not supported by SQLite.
4. Your response should be in JSON format following the *** Output Format *** provided below.

*** Output Format in Json ***:
{
    "sql_queries": {
        "question_1": {
            "insight_question": "Question 1",
            "sql_query": ""
        },
        "question_2": {
            "insight_question": "Question 2",
            "sql_query": ""
        },
        ...
    }
}
`

const PROMPT_INSIGHT_SUMMARY_EN = `
*** Role ***: You are a insights presenter.
*** Task ***: - You have been provided with the results of SQL queries generated to answer the insight questions using data provided in *** sql_queries_and_results *** section.
              - Your goal is to present the insights in a clear and concise manner.

*** sql_queries_and_results ***:
${sql_queries_and_results}

*** Instructions ***:
1. Review the results of the SQL queries and prepare a summary of the insights.
2. Focus on the key findings and trends that are relevant to the dataset.
3. Your response should be in a well-structured and readable format presenting the insights like they are being answered in a presentation.
4. Clearly explain each insight by stating what it reveals. If there's a trend, describe the nature of the trend; if there's a deviation, specify what differs and how.
5. Your response should be in JSON format following the *** Output Format *** provided below.

*** Output Format in JSON ***:
{
  "insights": {
    "question_1": "insight_1_summary",
    "question_2": "insight_2_summary",
    ...
  }
}
`

const PROMPT_ROUTER_EN = `
*** Role ***: You are a router agent.
*** Task ***: Analyze the user query given in the *** Query *** section and determine which single action to perform. You must decide which downstream agent should handle the query. The possible actions and their corresponding agents are:

    - **chat**: This agent answers queries about database information or small talk e.g: "how are you?", "what kind of data do you have?", "what kind of insights can be generated from the data?", "any patterns or trends in the data?", "informations about the data".
    - **insight details**: For answering queries about selected insights or their visualizability, including whether an insight is visualizable, its context, and any additional details, e.g the sql query used to generate the insight or "from the given insights which ones are visualizable or plotable?".
    - **sql database query**: This agent can only write the query, it can not answer information about the data textually.
    - **alert**: For creating alerts based on data conditions.
    - **visualization**: For generating visualizations based on the data only if the query explicitly asks for visual outputs.
    - **comparison**: For comparing two or more insights provided.

*** Query ***:
${user_query}

*** Instructions ***:
Inspect the query for keywords or context that indicate the user's intent. Follow these rules:
1. If the query asks to compare insights (e.g., "compare these insights", "what is the difference between...", "compare the insights"), classify it as **comparison**.
2. If the query seeks more details or explanations about insights, including asking if an insight is visualizable or requesting additional context, like the sql query used to generate the insight, classify it as **insight details**.
3. If the query is conversational or trying to get better knowledge about the database or small talk, classify it as **chat** e.g., "how are you?", "what kind of data do you have?", "what kind of insights can be generated from the data?", "any patterns or trends in the data?", "informations about the data".
4. If the query is for data retrieval (e.g., "average sales", "sales per region", "highest marketing cost"), classify it as **sql database query**. Remember, this is only for constructing queries to retrieve data, not for conversational topics.
5. If the query contains instructions to create alerts (e.g., "notify me when...", "create an alert if..."), classify it as **alert**.
6. If the query explicitly asks for visual outputs such as charts or graphs (e.g., "visualize insight", "show a chart", "visualize the trends", "create a graph"), classify it as **visualization**.
7. Output a JSON object with one key "action" whose value is exactly one of: "sql database query", "alert", "visualization", "comparison", "insight details", or "chat".

*** Output Format in JSON ***:
{"action": "sql database query/alert/visualization/comparison/insight details/chat"}
`

const PROMPT_CHAT_SQL_EN = `
*** Role ***: You are a SQL agent.
*** Task ***: - Given a user query in *** Query *** section and metadata for a database containing project data in *** Metadata Information *** section, generate an SQL query that retrieves the requested information.
              - Understand that you are a sqlite agent and you can use sqlite syntax to answer the query.

*** Query ***:
${user_query}

*** Metadata Information ***:
${columns}

*** Instructions ***:
1. Use the provided metadata (which includes table names, column names, data types) to understand the structure of the database.
2. Analyze the user's query in detail and construct an SQL query that accurately answers the user's query.
3. Consider using appropriate JOINs if the query requires data from multiple tables.
4. Never return the whole database by using SELECT * FROM table_name.
5. Output your answer as a JSON object with one key "sql_query" whose value is the SQL query.

*** Output Format in JSON ***:
{"sql_query": "...Your SQL query here..."}
`

const PROMPT_ALERT_EN = `
*** Role ***: You are an alert agent.
*** Task ***: Given a user query in *** Query *** section and metadata for a database containing project data in *** Metadata Information *** section, create a simple alert message.

*** Query ***:
${user_query}

*** Metadata Information ***:
${columns}

*** Insights ***:
${insights}

*** Instructions ***:
1. Consider the user's request and create a brief alert message.
2. If the alert is for database-level information, consider the columns and their values to create the alert, or if its for insights, consider the insights provided.
3. The alert should be clear, specific and actionable.
4. Keep it to one sentence that summarizes what condition to monitor.
5. Examples: "Alert: Sales dropped below 1000" or "Alert: Customer complaints exceed 5% of feedback"

NO JSON OR FORMATTING NEEDED - just respond with the alert message directly.
`

const PROMPT_VISUALIZATION_EN = `
*** Role ***: You are a visualization agent.
*** Task ***: Given a user query in the *** Query *** section, metadata for tables containing project data in the *** Metadata Information *** section, and derived insights in the *** Insights *** section, describe a chart that answers the query.

*** Query ***:
${user_query}

*** Metadata Information ***:
${columns}

*** Insights ***:
${insights}

*** Instructions ***:
1. Determine whether the user query is asking to visualize **database-level information** or to visualize a specific **insight**.
   - If the query references metrics, dimensions, or comparisons related to the raw data (e.g., "average sales by region", "sales over time"), describe a chart over the raw tables using the metadata.
   - If the query references an insight or asks to visualize a discovered pattern, trend, or summary, use the *** Insights *** section as context.
2. Use the provided metadata to identify relevant columns and relationships for the chart.
3. Write one SQLite SELECT statement that returns exactly the rows the chart needs: the first selected column is the label/x axis, the second is the numeric value/y axis. Keep the result small (aggregate, LIMIT if needed).
4. Select the appropriate chart type based on the context of the query: "bar", "line", "scatter" or "pie".
5. Provide an informative title and axis labels.
6. Output the result as a single JSON object following the *** Output Format *** below. Do not output any code.

*** Output Format in JSON ***:
{"chart_type": "bar", "title": "Chart Title", "sql_query": "SELECT ...", "x_label": "Category", "y_label": "Value"}
`

const PROMPT_COMPARISON_EN = `
*** Role ***: You are an insight comparison agent.
*** Task ***: Given a user query in *** Query *** section and a JSON dictionary containing two or more insights in *** Insights *** section, compare the insights and generate a comparison summary.

*** Query ***:
${user_query}

*** Insights ***:
${insights}

*** Instructions ***:
1. Analyze the provided insights, which contain metadata or results for different queries.
2. Compare these insights by highlighting similarities, differences, trends, and relationships between them.
3. If insights are from different time periods, focus on changes over time.
4. If insights are from different categories, focus on comparing performance or behavior across categories.
5. Provide a concise comparison summary that addresses the user's query.
6. Output your answer following the *** Output Format ***.

*** Output Format ***:
"Your comparison summary here."
`

const PROMPT_INSIGHT_DETAILS_EN = `
*** Role ***: You are an insight details agent.
*** Task ***: - Given a user query in the *** Query *** section and metadata containing detailed information about selected insights in the *** Insights *** section, provide an answer that explains the insights, their visualizability, context, and implications.
              - Do not give whats not asked for, stay relevant to the query.

*** Query ***:
${user_query}

*** Metadata Information ***:
${metadata}

*** Insights ***:
${insights}

*** Instructions ***:
1. Analyze the query to determine if the user is asking for additional details or explanation about the selected insights such as its visualizability, context, or implications and try to answer the query explicitly.
2. If the query is about the sql query used to generate the insight, provide the sql query used to generate the insight.
3. If the query requests further details, provide a detailed explanation including context, trends, and any additional relevant information.
4. Consider the business implications of the data and explain what the insights actually mean in practical terms.
5. Highlight potential actions that could be taken based on these insights.
6. Output your answer following the *** Output Format ***.

*** Output Format ***:
"Your answer to the user query here in structured format."
`

const PROMPT_CASUAL_CHAT_EN = `
*** Role ***: You are a casual chat agent.
*** Task ***: - Engage in a conversation with the user based on the query provided in the *** Query *** section. The query may involve small talk (e.g., "how are you?"), casual discussion of the database (e.g., "what kind of data do you have?"), or curious exploration (e.g., "why do you think sales dropped?").
              - If the user seems interested in the type of data available, suggest the kinds of insights that could be generated from it.

*** Query ***:
${user_query}

*** Metadata ***:
${metadata}

*** Instructions ***:
1. Respond in a friendly, conversational, and engaging tone.
2. If the query touches on the database, describe the kind of data available in an approachable way (based on the columns).
3. If appropriate, suggest types of insights that could be derived from this data (e.g., trends, comparisons, anomalies), but do so casually and without going too technical.
4. If the query is purely small talk or casual, keep it warm, witty, or supportive.
5. Avoid formal or overly detailed responses, the vibe should feel like a helpful chat with a data-savvy friend.
6. Output your answer following the *** Output Format ***.

*** Output Format***:
"Your response here".
`
